package models

import "time"

// Publication statuses. PUBLISHED is immutable except through unpublish;
// DECLINED is terminal for that version.
const (
	PublicationStatusQueued    = 1
	PublicationStatusScheduled = 2
	PublicationStatusPublished = 3
	PublicationStatusDeclined  = 4
)

// Publication represents the publications table — one version of a
// submission's metadata/content.
type Publication struct {
	PublicationID int        `gorm:"primaryKey;column:publication_id" json:"publication_id"`
	SubmissionID  int        `gorm:"column:submission_id" json:"submission_id"`
	Status        int        `gorm:"column:status" json:"status"`
	VersionNumber int        `gorm:"column:version_number" json:"version_number"`
	Locale        string     `gorm:"column:locale" json:"locale"`
	Title         string     `gorm:"column:title" json:"title"`
	Abstract      *string    `gorm:"column:abstract" json:"abstract"`
	Copyright     *string    `gorm:"column:copyright" json:"copyright"`
	PublishedAt   *time.Time `gorm:"column:published_at" json:"published_at"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt     *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Submission *Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
}

// TableName overrides the table name for Publication
func (Publication) TableName() string {
	return "publications"
}

// IsPublished reports whether this version is currently exposed to readers.
func (p *Publication) IsPublished() bool {
	return p.Status == PublicationStatusPublished
}
