package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"editorial-workflow-api/models"

	"gorm.io/gorm"
)

// Notifier delivers a fire-and-forget notification to the given
// recipients. Failures are logged and never abort the triggering operation.
type Notifier func(to []string, subject, body string) error

// PublicationService owns the publication version state machine and
// assembles the submission view, filtered through the access and
// anonymization policies.
type PublicationService struct {
	db     *gorm.DB
	files  *FileService
	notify Notifier
}

func NewPublicationService(db *gorm.DB, files *FileService, notify Notifier) *PublicationService {
	return &PublicationService{db: db, files: files, notify: notify}
}

// AddSubmissionRequest carries the intake payload for a new submission and
// its first publication version.
type AddSubmissionRequest struct {
	ContextID int
	Locale    string
	Title     string
	Abstract  *string
}

// Add creates a submission, its first QUEUED publication version and the
// submitter's author stage assignment in one transaction.
func (s *PublicationService) Add(caller Caller, req AddSubmissionRequest) (*models.Submission, *models.Publication, error) {
	fields := make(map[string][]string)
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = append(fields["title"], "a title is required")
	}
	if req.Locale == "" {
		fields["locale"] = append(fields["locale"], "a locale is required")
	}
	if len(fields) > 0 {
		return nil, nil, &ValidationError{Fields: fields}
	}

	now := time.Now()
	submission := models.Submission{
		ContextID:        req.ContextID,
		SubmissionNumber: generateSubmissionNumber(),
		SubmitterID:      caller.UserID,
		Status:           models.SubmissionStatusQueued,
		Locale:           req.Locale,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	publication := models.Publication{
		Status:        models.PublicationStatusQueued,
		VersionNumber: 1,
		Locale:        req.Locale,
		Title:         req.Title,
		Abstract:      req.Abstract,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		publication.SubmissionID = submission.SubmissionID
		if err := tx.Create(&publication).Error; err != nil {
			return fmt.Errorf("failed to create publication: %w", err)
		}
		if err := tx.Model(&submission).
			Update("current_publication_id", publication.PublicationID).Error; err != nil {
			return err
		}
		assignment := models.StageAssignment{
			SubmissionID: submission.SubmissionID,
			UserID:       caller.UserID,
			RoleID:       models.RoleAuthor,
			StageID:      models.StageSubmission,
			CreatedAt:    now,
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, nil, err
	}

	submission.CurrentPublicationID = &publication.PublicationID
	return &submission, &publication, nil
}

// CreateVersion clones the publication into a new QUEUED version with the
// next version number. Prior versions are never touched. Assigned users are
// notified after the commit; notification failure never rolls back.
func (s *PublicationService) CreateVersion(caller Caller, publicationID int) (*models.Publication, error) {
	source, err := s.getPublication(publicationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	version := models.Publication{
		SubmissionID: source.SubmissionID,
		Status:       models.PublicationStatusQueued,
		Locale:       source.Locale,
		Title:        source.Title,
		Abstract:     source.Abstract,
		Copyright:    source.Copyright,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		if err := tx.Model(&models.Publication{}).
			Where("submission_id = ? AND deleted_at IS NULL", source.SubmissionID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}
		version.VersionNumber = maxVersion + 1
		return tx.Create(&version).Error
	})
	if err != nil {
		return nil, err
	}

	go s.notifyVersionCreated(source.SubmissionID, &version)

	return &version, nil
}

// Edit applies validated field changes to a non-published version. Status
// never changes through Edit.
func (s *PublicationService) Edit(caller Caller, publicationID int, changes PublicationChanges) error {
	pub, err := s.getPublication(publicationID)
	if err != nil {
		return err
	}

	if changes.Status != nil {
		return &ImmutableStateError{Reason: "status can only change through publish and unpublish"}
	}
	if pub.Status == models.PublicationStatusPublished {
		return &ImmutableStateError{Reason: "a published version cannot be edited; unpublish it first"}
	}
	if pub.Status == models.PublicationStatusDeclined {
		return &ImmutableStateError{Reason: "a declined version cannot be edited"}
	}
	if err := validatePublicationChanges(changes); err != nil {
		return err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Abstract != nil {
		updates["abstract"] = *changes.Abstract
	}
	if changes.Copyright != nil {
		updates["copyright"] = *changes.Copyright
	}
	if changes.Locale != nil {
		updates["locale"] = *changes.Locale
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Publication{}).
			Where("publication_id = ?", publicationID).
			Updates(updates).Error; err != nil {
			return err
		}
		// Keep the submission's cached summary fresh.
		return s.touchSubmission(tx, pub.SubmissionID)
	})
}

// Publish transitions a QUEUED or SCHEDULED version to PUBLISHED after the
// readiness validation, and makes it the submission's current version.
func (s *PublicationService) Publish(caller Caller, publicationID int) error {
	pub, err := s.getPublication(publicationID)
	if err != nil {
		return err
	}

	switch pub.Status {
	case models.PublicationStatusPublished:
		return &AlreadyPublishedError{PublicationID: publicationID}
	case models.PublicationStatusDeclined:
		return &ImmutableStateError{Reason: "a declined version cannot be published"}
	}

	submission, err := s.getSubmission(pub.SubmissionID)
	if err != nil {
		return err
	}
	if err := validatePublishReadiness(pub, submission); err != nil {
		return err
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Publication{}).
			Where("publication_id = ?", publicationID).
			Updates(map[string]interface{}{
				"status":       models.PublicationStatusPublished,
				"published_at": now,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Submission{}).
			Where("submission_id = ?", pub.SubmissionID).
			Updates(map[string]interface{}{
				"current_publication_id": publicationID,
				"status":                 models.SubmissionStatusPublished,
				"updated_at":             now,
			}).Error
	})
}

// Unpublish moves a PUBLISHED or SCHEDULED version back to QUEUED.
func (s *PublicationService) Unpublish(caller Caller, publicationID int) error {
	pub, err := s.getPublication(publicationID)
	if err != nil {
		return err
	}

	if pub.Status != models.PublicationStatusPublished && pub.Status != models.PublicationStatusScheduled {
		return &NotPublishedError{PublicationID: publicationID}
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Publication{}).
			Where("publication_id = ?", publicationID).
			Updates(map[string]interface{}{
				"status":       models.PublicationStatusQueued,
				"published_at": nil,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}
		return s.resyncSubmissionStatus(tx, pub.SubmissionID)
	})
}

// Schedule moves a QUEUED version to SCHEDULED after the same readiness
// validation publishing requires.
func (s *PublicationService) Schedule(caller Caller, publicationID int) error {
	pub, err := s.getPublication(publicationID)
	if err != nil {
		return err
	}
	switch pub.Status {
	case models.PublicationStatusPublished:
		return &AlreadyPublishedError{PublicationID: publicationID}
	case models.PublicationStatusScheduled:
		return nil
	case models.PublicationStatusDeclined:
		return &ImmutableStateError{Reason: "a declined version cannot be scheduled"}
	}

	submission, err := s.getSubmission(pub.SubmissionID)
	if err != nil {
		return err
	}
	if err := validatePublishReadiness(pub, submission); err != nil {
		return err
	}

	return s.db.Model(&models.Publication{}).
		Where("publication_id = ?", publicationID).
		Updates(map[string]interface{}{
			"status":     models.PublicationStatusScheduled,
			"updated_at": time.Now(),
		}).Error
}

// Decline marks a non-published version as DECLINED. Declined versions are
// terminal; a new version may still be created from them.
func (s *PublicationService) Decline(caller Caller, publicationID int) error {
	pub, err := s.getPublication(publicationID)
	if err != nil {
		return err
	}
	if pub.Status == models.PublicationStatusPublished {
		return &ImmutableStateError{Reason: "a published version cannot be declined; unpublish it first"}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Publication{}).
			Where("publication_id = ?", publicationID).
			Updates(map[string]interface{}{
				"status":     models.PublicationStatusDeclined,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		return s.resyncSubmissionStatus(tx, pub.SubmissionID)
	})
}

// Delete removes a non-published version and repoints the submission's
// current version when necessary.
func (s *PublicationService) Delete(caller Caller, publicationID int) error {
	pub, err := s.getPublication(publicationID)
	if err != nil {
		return err
	}
	if pub.Status == models.PublicationStatusPublished {
		return &ImmutableStateError{Reason: "a published version cannot be deleted"}
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Publication{}).
			Where("publication_id = ?", publicationID).
			Updates(map[string]interface{}{"deleted_at": now, "updated_at": now}).Error; err != nil {
			return err
		}

		var submission models.Submission
		if err := tx.Where("submission_id = ?", pub.SubmissionID).First(&submission).Error; err != nil {
			return err
		}
		if submission.CurrentPublicationID == nil || *submission.CurrentPublicationID != publicationID {
			return nil
		}

		// Repoint the current version to the latest remaining one.
		var latest models.Publication
		err := tx.Where("submission_id = ? AND deleted_at IS NULL", pub.SubmissionID).
			Order("version_number DESC").
			First(&latest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Model(&submission).Update("current_publication_id", nil).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&submission).Update("current_publication_id", latest.PublicationID).Error
	})
}

// SubmissionView is the assembled read model returned to callers, already
// filtered through the access and anonymization policies.
type SubmissionView struct {
	Submission   models.Submission         `json:"submission"`
	Publications []models.Publication      `json:"publications"`
	Files        []models.ManuscriptFile   `json:"files"`
	Reviews      []models.ReviewAssignment `json:"reviews"`
}

// GetSubmissionView loads the submission with its versions, the files in
// stages the caller may read, and the review assignments with reviewer
// identities redacted per the anonymization policy.
func (s *PublicationService) GetSubmissionView(caller Caller, submissionID int) (*SubmissionView, error) {
	submission, err := s.getSubmission(submissionID)
	if err != nil {
		return nil, err
	}

	var assignments []models.ReviewAssignment
	if err := s.db.
		Where("submission_id = ?", submissionID).
		Preload("Reviewer").
		Order("review_id").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	if !s.canViewSubmission(caller, submission, assignments) {
		return nil, &AccessDeniedError{UserID: caller.UserID, FileStage: 0}
	}

	var publications []models.Publication
	if err := s.db.
		Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		Order("version_number").
		Find(&publications).Error; err != nil {
		return nil, err
	}

	files, err := s.files.ListFiles(caller, submissionID)
	if err != nil {
		return nil, err
	}

	redact := ReviewRedactSet(caller, assignments)

	return &SubmissionView{
		Submission:   *submission,
		Publications: publications,
		Files:        files,
		Reviews:      RedactReviews(assignments, redact),
	}, nil
}

// ListSubmissions returns the submissions visible to the caller within a
// context: everything for bypass roles, otherwise submissions the caller
// authored, is assigned to, or reviews.
func (s *PublicationService) ListSubmissions(caller Caller, contextID int) ([]models.Submission, error) {
	query := s.db.
		Where("deleted_at IS NULL").
		Preload("Submitter").
		Order("created_at DESC")
	if contextID != 0 {
		query = query.Where("context_id = ?", contextID)
	}

	if !models.HasEditorialBypass(caller.Roles) {
		query = query.Where(
			"submitter_id = ?"+
				" OR submission_id IN (SELECT submission_id FROM stage_assignments WHERE user_id = ? AND deleted_at IS NULL)"+
				" OR submission_id IN (SELECT submission_id FROM review_assignments WHERE reviewer_id = ?)",
			caller.UserID, caller.UserID, caller.UserID,
		)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// DeleteSubmission cascades a soft delete over the submission and
// everything it owns.
func (s *PublicationService) DeleteSubmission(caller Caller, submissionID int) error {
	submission, err := s.getSubmission(submissionID)
	if err != nil {
		return err
	}
	if !models.HasEditorialBypass(caller.Roles) && submission.SubmitterID != caller.UserID {
		return &AccessDeniedError{UserID: caller.UserID, FileStage: 0}
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		deleted := map[string]interface{}{"deleted_at": now}
		if err := tx.Model(&models.ManuscriptFile{}).
			Where("submission_id = ? AND deleted_at IS NULL", submissionID).
			Updates(deleted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Publication{}).
			Where("submission_id = ? AND deleted_at IS NULL", submissionID).
			Updates(deleted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.StageAssignment{}).
			Where("submission_id = ? AND deleted_at IS NULL", submissionID).
			Updates(deleted).Error; err != nil {
			return err
		}
		return tx.Model(&models.Submission{}).
			Where("submission_id = ?", submissionID).
			Updates(map[string]interface{}{"deleted_at": now, "updated_at": now}).Error
	})
}

func (s *PublicationService) canViewSubmission(caller Caller, submission *models.Submission, assignments []models.ReviewAssignment) bool {
	if models.HasEditorialBypass(caller.Roles) {
		return true
	}
	if submission.SubmitterID == caller.UserID {
		return true
	}
	for _, sa := range caller.StageAssignments {
		if sa.DeletedAt == nil {
			return true
		}
	}
	for _, assignment := range assignments {
		if assignment.ReviewerID == caller.UserID {
			return true
		}
	}
	return false
}

func (s *PublicationService) getPublication(publicationID int) (*models.Publication, error) {
	var pub models.Publication
	err := s.db.Where("publication_id = ? AND deleted_at IS NULL", publicationID).First(&pub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "publication", ID: publicationID}
		}
		return nil, err
	}
	return &pub, nil
}

func (s *PublicationService) getSubmission(submissionID int) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "submission", ID: submissionID}
		}
		return nil, err
	}
	return &submission, nil
}

// touchSubmission refreshes the aggregate's updated_at so cached summaries
// re-derive.
func (s *PublicationService) touchSubmission(tx *gorm.DB, submissionID int) error {
	return tx.Model(&models.Submission{}).
		Where("submission_id = ?", submissionID).
		Update("updated_at", time.Now()).Error
}

// resyncSubmissionStatus re-derives the submission status from its
// remaining versions: published while any version is live, declined when
// every version is declined, queued otherwise.
func (s *PublicationService) resyncSubmissionStatus(tx *gorm.DB, submissionID int) error {
	var statuses []int
	if err := tx.Model(&models.Publication{}).
		Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		Pluck("status", &statuses).Error; err != nil {
		return err
	}

	status := models.SubmissionStatusQueued
	if len(statuses) > 0 {
		allDeclined := true
		for _, st := range statuses {
			if st == models.PublicationStatusPublished {
				status = models.SubmissionStatusPublished
				allDeclined = false
				break
			}
			if st != models.PublicationStatusDeclined {
				allDeclined = false
			}
		}
		if status != models.SubmissionStatusPublished && allDeclined {
			status = models.SubmissionStatusDeclined
		}
	}

	return tx.Model(&models.Submission{}).
		Where("submission_id = ?", submissionID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

// notifyVersionCreated emails every user assigned to the submission about
// the new version. Best effort only.
func (s *PublicationService) notifyVersionCreated(submissionID int, version *models.Publication) {
	if s.notify == nil {
		return
	}

	var emails []string
	if err := s.db.Model(&models.StageAssignment{}).
		Distinct("users.email").
		Joins("JOIN users ON users.user_id = stage_assignments.user_id AND users.delete_at IS NULL").
		Where("stage_assignments.submission_id = ? AND stage_assignments.deleted_at IS NULL", submissionID).
		Pluck("users.email", &emails).Error; err != nil {
		log.Printf("Warning: failed to load recipients for submission %d: %v", submissionID, err)
		return
	}
	if len(emails) == 0 {
		return
	}

	subject := fmt.Sprintf("New version %d created", version.VersionNumber)
	body := fmt.Sprintf("<p>Version %d of <b>%s</b> was created and is ready for editing.</p>",
		version.VersionNumber, version.Title)
	if err := s.notify(emails, subject, body); err != nil {
		log.Printf("Warning: failed to send version notification for submission %d: %v", submissionID, err)
	}
}

// generateSubmissionNumber builds a human-readable reference such as
// SUB-2026-550e8400.
func generateSubmissionNumber() string {
	return fmt.Sprintf("SUB-%d-%s", time.Now().Year(), shortID())
}
