package models

import "time"

// File stages — finer-grained classification of a ManuscriptFile, mapped
// many-to-one onto workflow stages.
const (
	FileStageSubmission             = 1
	FileStageInternalReviewFile     = 2
	FileStageInternalReviewRevision = 3
	FileStageReviewFile             = 4
	FileStageReviewRevision         = 5
	FileStageFinal                  = 6
	FileStageCopyedit               = 7
	FileStageProductionReady        = 8
	FileStageProof                  = 9
	FileStageMedia                  = 10

	// Internal-only stages. Never reachable through the upload API and
	// never derived from stage assignments.
	FileStageNote             = 11
	FileStageQueryAttachment  = 12
	FileStageReviewAttachment = 13
)

// Association types for file placement.
const (
	AssocTypeSubmission  = 1
	AssocTypeReviewRound = 2
)

// ManuscriptFile represents the manuscript_files table — a staged artifact
// attached to a submission. Files in a review-file stage must carry the
// review round they belong to. Media files may share a variant group with
// alternate renditions of the same content.
type ManuscriptFile struct {
	FileID         int        `gorm:"primaryKey;column:file_id" json:"file_id"`
	SubmissionID   int        `gorm:"column:submission_id" json:"submission_id"`
	FileStage      int        `gorm:"column:file_stage" json:"file_stage"`
	ReviewRoundID  *int       `gorm:"column:review_round_id" json:"review_round_id"`
	VariantGroupID *string    `gorm:"column:variant_group_id" json:"variant_group_id"`
	GenreID        int        `gorm:"column:genre_id" json:"genre_id"`
	UploaderUserID int        `gorm:"column:uploader_user_id" json:"uploader_user_id"`
	BlobID         string     `gorm:"column:blob_id" json:"blob_id"`
	OriginalName   string     `gorm:"column:original_name" json:"original_name"`
	Name           string     `gorm:"column:name" json:"name"`
	Caption        *string    `gorm:"column:caption" json:"caption"`
	MimeType       string     `gorm:"column:mime_type" json:"mime_type"`
	FileSize       int64      `gorm:"column:file_size" json:"file_size"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Uploader *User `gorm:"foreignKey:UploaderUserID" json:"uploader,omitempty"`
}

// TableName overrides the table name for ManuscriptFile
func (ManuscriptFile) TableName() string {
	return "manuscript_files"
}

// ReviewFileStages are the file stages that must be bound to a review round.
var ReviewFileStages = []int{
	FileStageInternalReviewFile,
	FileStageInternalReviewRevision,
	FileStageReviewFile,
	FileStageReviewRevision,
}

// InternalFileStages are excluded from the upload API and from
// assignment-derived access.
var InternalFileStages = []int{
	FileStageNote,
	FileStageQueryAttachment,
	FileStageReviewAttachment,
}

// IsReviewFileStage reports whether files in the stage belong to a review round.
func IsReviewFileStage(fileStage int) bool {
	for _, stage := range ReviewFileStages {
		if stage == fileStage {
			return true
		}
	}
	return false
}

// IsInternalFileStage reports whether the stage is internal-only.
func IsInternalFileStage(fileStage int) bool {
	for _, stage := range InternalFileStages {
		if stage == fileStage {
			return true
		}
	}
	return false
}

// ReviewStageIDFor returns the workflow review stage a review-file stage
// belongs to, or 0 for non-review stages.
func ReviewStageIDFor(fileStage int) int {
	switch fileStage {
	case FileStageInternalReviewFile, FileStageInternalReviewRevision:
		return StageInternalReview
	case FileStageReviewFile, FileStageReviewRevision:
		return StageExternalReview
	default:
		return 0
	}
}

// VariantCommonFields are the descriptive fields kept synchronized across
// all members of a variant group.
var VariantCommonFields = []string{"name", "caption"}
