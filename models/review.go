package models

import "time"

// Review methods — the disclosure policy of a review assignment.
const (
	ReviewMethodOpen            = 1
	ReviewMethodAnonymous       = 2
	ReviewMethodDoubleAnonymous = 3
)

// ReviewRound represents the review_rounds table — one bounded review
// iteration within the internal or external review stage.
type ReviewRound struct {
	ReviewRoundID int       `gorm:"primaryKey;column:review_round_id" json:"review_round_id"`
	SubmissionID  int       `gorm:"column:submission_id" json:"submission_id"`
	StageID       int       `gorm:"column:stage_id" json:"stage_id"`
	Round         int       `gorm:"column:round" json:"round"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

// ReviewAssignment represents the review_assignments table — a reviewer
// bound to a submission/review round with a review method.
type ReviewAssignment struct {
	ReviewID      int        `gorm:"primaryKey;column:review_id" json:"review_id"`
	SubmissionID  int        `gorm:"column:submission_id" json:"submission_id"`
	ReviewRoundID int        `gorm:"column:review_round_id" json:"review_round_id"`
	ReviewerID    int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	ReviewMethod  int        `gorm:"column:review_method" json:"review_method"`
	Comments      *string    `gorm:"column:comments" json:"comments"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName overrides
func (ReviewRound) TableName() string {
	return "review_rounds"
}

func (ReviewAssignment) TableName() string {
	return "review_assignments"
}
