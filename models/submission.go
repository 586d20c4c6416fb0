package models

import "time"

// Workflow stage IDs (ordered editorial phases a submission passes through).
const (
	StageSubmission     = 1
	StageInternalReview = 2
	StageExternalReview = 3
	StageCopyediting    = 4
	StageProduction     = 5
)

// Submission lifecycle statuses, independent of per-publication status.
const (
	SubmissionStatusQueued    = 1
	SubmissionStatusPublished = 2
	SubmissionStatusDeclined  = 3
)

// Submission represents the submissions table (aggregate root)
type Submission struct {
	SubmissionID         int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	ContextID            int        `gorm:"column:context_id" json:"context_id"`
	SubmissionNumber     string     `gorm:"column:submission_number" json:"submission_number"`
	SubmitterID          int        `gorm:"column:submitter_id" json:"submitter_id"`
	Status               int        `gorm:"column:status" json:"status"`
	CurrentPublicationID *int       `gorm:"column:current_publication_id" json:"current_publication_id"`
	Locale               string     `gorm:"column:locale" json:"locale"`
	CreatedAt            time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt            *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Submitter        *User             `gorm:"foreignKey:SubmitterID" json:"submitter,omitempty"`
	Publications     []Publication     `gorm:"foreignKey:SubmissionID" json:"publications,omitempty"`
	Files            []ManuscriptFile  `gorm:"foreignKey:SubmissionID" json:"files,omitempty"`
	StageAssignments []StageAssignment `gorm:"foreignKey:SubmissionID" json:"stage_assignments,omitempty"`
	ReviewRounds     []ReviewRound     `gorm:"foreignKey:SubmissionID" json:"review_rounds,omitempty"`
}

// StageAssignment binds a user (with a role) to a submission at one
// workflow stage. RecommendOnly assignments may read stage files but not
// modify them.
type StageAssignment struct {
	StageAssignmentID int        `gorm:"primaryKey;column:stage_assignment_id" json:"stage_assignment_id"`
	SubmissionID      int        `gorm:"column:submission_id" json:"submission_id"`
	UserID            int        `gorm:"column:user_id" json:"user_id"`
	RoleID            int        `gorm:"column:role_id" json:"role_id"`
	StageID           int        `gorm:"column:stage_id" json:"stage_id"`
	RecommendOnly     bool       `gorm:"column:recommend_only" json:"recommend_only"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`
	DeletedAt         *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (StageAssignment) TableName() string {
	return "stage_assignments"
}
