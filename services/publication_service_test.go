package services

import (
	"testing"

	"editorial-workflow-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPublicationService(t *testing.T) (*PublicationService, *FileService, *fakeBlobStore, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	blobs := newFakeBlobStore()
	variants := NewVariantService(db)
	files := NewFileService(db, blobs, variants)
	svc := NewPublicationService(db, files, nil)
	return svc, files, blobs, db
}

func TestAdd_CreatesSubmissionVersionAndAssignment(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	seedUser(t, db, 10, models.RoleAuthor)

	abstract := "We study workflows."
	submission, publication, err := svc.Add(
		Caller{UserID: 10, Roles: []int{models.RoleAuthor}},
		AddSubmissionRequest{ContextID: 1, Locale: "en", Title: "Workflows", Abstract: &abstract},
	)
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionStatusQueued, submission.Status)
	assert.Equal(t, 1, publication.VersionNumber)
	assert.Equal(t, models.PublicationStatusQueued, publication.Status)
	require.NotNil(t, submission.CurrentPublicationID)
	assert.Equal(t, publication.PublicationID, *submission.CurrentPublicationID)

	var assignments []models.StageAssignment
	require.NoError(t, db.Where("submission_id = ?", submission.SubmissionID).Find(&assignments).Error)
	require.Len(t, assignments, 1)
	assert.Equal(t, models.RoleAuthor, assignments[0].RoleID)
	assert.Equal(t, models.StageSubmission, assignments[0].StageID)
}

func TestAdd_RequiresTitleAndLocale(t *testing.T) {
	svc, _, _, _ := setupPublicationService(t)

	_, _, err := svc.Add(Caller{UserID: 10}, AddSubmissionRequest{ContextID: 1})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "title")
	assert.Contains(t, validation.Fields, "locale")
}

func TestCreateVersion_Monotonic(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	first := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusPublished)

	v2, err := svc.CreateVersion(managerCaller(1), first.PublicationID)
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)
	assert.Equal(t, models.PublicationStatusQueued, v2.Status)

	v3, err := svc.CreateVersion(managerCaller(1), first.PublicationID)
	require.NoError(t, err)
	assert.Equal(t, 3, v3.VersionNumber)

	// The source version is untouched.
	var source models.Publication
	require.NoError(t, db.Where("publication_id = ?", first.PublicationID).First(&source).Error)
	assert.Equal(t, models.PublicationStatusPublished, source.Status)
	assert.Equal(t, 1, source.VersionNumber)
}

func TestCreateVersion_SourceMissing(t *testing.T) {
	svc, _, _, _ := setupPublicationService(t)

	_, err := svc.CreateVersion(managerCaller(1), 999)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "publication", notFound.Entity)
}

func TestEdit_RejectsStatusChange(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	pub := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)

	status := models.PublicationStatusPublished
	err := svc.Edit(managerCaller(1), pub.PublicationID, PublicationChanges{Status: &status})

	var immutable *ImmutableStateError
	require.ErrorAs(t, err, &immutable)
}

func TestPublishUnpublishRoundTrip(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	pub := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)
	caller := managerCaller(1)

	// Publish succeeds with complete metadata.
	require.NoError(t, svc.Publish(caller, pub.PublicationID))

	var published models.Publication
	require.NoError(t, db.Where("publication_id = ?", pub.PublicationID).First(&published).Error)
	assert.Equal(t, models.PublicationStatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)

	var updatedSubmission models.Submission
	require.NoError(t, db.Where("submission_id = ?", submission.SubmissionID).First(&updatedSubmission).Error)
	assert.Equal(t, models.SubmissionStatusPublished, updatedSubmission.Status)
	require.NotNil(t, updatedSubmission.CurrentPublicationID)
	assert.Equal(t, pub.PublicationID, *updatedSubmission.CurrentPublicationID)

	// Published versions are immutable.
	title := "x"
	err := svc.Edit(caller, pub.PublicationID, PublicationChanges{Title: &title})
	var immutable *ImmutableStateError
	require.ErrorAs(t, err, &immutable)

	// Publishing again fails.
	var already *AlreadyPublishedError
	require.ErrorAs(t, svc.Publish(caller, pub.PublicationID), &already)

	// Unpublish returns to QUEUED and the edit now succeeds. Re-read into a
	// zeroed struct: GORM leaves a previously-set pointer field untouched
	// when the column is NULL.
	require.NoError(t, svc.Unpublish(caller, pub.PublicationID))
	published = models.Publication{}
	require.NoError(t, db.Where("publication_id = ?", pub.PublicationID).First(&published).Error)
	assert.Equal(t, models.PublicationStatusQueued, published.Status)
	assert.Nil(t, published.PublishedAt)

	require.NoError(t, svc.Edit(caller, pub.PublicationID, PublicationChanges{Title: &title}))
	require.NoError(t, db.Where("publication_id = ?", pub.PublicationID).First(&published).Error)
	assert.Equal(t, "x", published.Title)
}

func TestPublish_RequiresCompleteMetadata(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	pub := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)
	require.NoError(t, db.Model(&models.Publication{}).
		Where("publication_id = ?", pub.PublicationID).
		Updates(map[string]interface{}{"title": "", "abstract": nil}).Error)

	err := svc.Publish(managerCaller(1), pub.PublicationID)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "title")
	assert.Contains(t, validation.Fields, "abstract")
}

func TestUnpublish_RequiresPublishedOrScheduled(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	pub := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)

	var notPublished *NotPublishedError
	require.ErrorAs(t, svc.Unpublish(managerCaller(1), pub.PublicationID), &notPublished)
}

func TestScheduleThenPublish(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	pub := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)
	caller := managerCaller(1)

	require.NoError(t, svc.Schedule(caller, pub.PublicationID))

	var scheduled models.Publication
	require.NoError(t, db.Where("publication_id = ?", pub.PublicationID).First(&scheduled).Error)
	assert.Equal(t, models.PublicationStatusScheduled, scheduled.Status)

	require.NoError(t, svc.Publish(caller, pub.PublicationID))
	require.NoError(t, db.Where("publication_id = ?", pub.PublicationID).First(&scheduled).Error)
	assert.Equal(t, models.PublicationStatusPublished, scheduled.Status)
}

func TestDecline_IsTerminal(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	pub := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)
	caller := managerCaller(1)

	require.NoError(t, svc.Decline(caller, pub.PublicationID))

	var immutable *ImmutableStateError
	title := "new title"
	require.ErrorAs(t, svc.Edit(caller, pub.PublicationID, PublicationChanges{Title: &title}), &immutable)
	require.ErrorAs(t, svc.Publish(caller, pub.PublicationID), &immutable)

	// The whole submission is declined once every version is.
	var declined models.Submission
	require.NoError(t, db.Where("submission_id = ?", submission.SubmissionID).First(&declined).Error)
	assert.Equal(t, models.SubmissionStatusDeclined, declined.Status)

	// A new version can still be created from a declined one.
	v2, err := svc.CreateVersion(caller, pub.PublicationID)
	require.NoError(t, err)
	assert.Equal(t, 2, v2.VersionNumber)
}

func TestDelete_PublishedIsImmutable(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	pub := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusPublished)

	var immutable *ImmutableStateError
	require.ErrorAs(t, svc.Delete(managerCaller(1), pub.PublicationID), &immutable)
}

func TestDelete_RepointsCurrentVersion(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	v1 := seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)
	v2 := seedPublication(t, db, submission.SubmissionID, 2, models.PublicationStatusQueued)
	require.NoError(t, db.Model(&models.Submission{}).
		Where("submission_id = ?", submission.SubmissionID).
		Update("current_publication_id", v2.PublicationID).Error)

	require.NoError(t, svc.Delete(managerCaller(1), v2.PublicationID))

	var after models.Submission
	require.NoError(t, db.Where("submission_id = ?", submission.SubmissionID).First(&after).Error)
	require.NotNil(t, after.CurrentPublicationID)
	assert.Equal(t, v1.PublicationID, *after.CurrentPublicationID)
}

func TestGetSubmissionView_FiltersFilesAndRedactsReviews(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)
	seedFile(t, db, submission.SubmissionID, models.FileStageSubmission, nil)
	seedFile(t, db, submission.SubmissionID, models.FileStageReviewFile, nil)

	reviewer := seedUser(t, db, 200, models.RoleReviewer)
	other := seedUser(t, db, 300, models.RoleReviewer)
	round := seedReviewRound(t, db, submission.SubmissionID, models.StageExternalReview, 1)
	require.NoError(t, db.Create(&models.ReviewAssignment{
		SubmissionID: submission.SubmissionID, ReviewRoundID: round.ReviewRoundID,
		ReviewerID: reviewer.UserID, ReviewMethod: models.ReviewMethodAnonymous,
	}).Error)
	require.NoError(t, db.Create(&models.ReviewAssignment{
		SubmissionID: submission.SubmissionID, ReviewRoundID: round.ReviewRoundID,
		ReviewerID: other.UserID, ReviewMethod: models.ReviewMethodAnonymous,
	}).Error)

	// The reviewer has no stage assignments: they see no files, their own
	// review, and the other review redacted.
	view, err := svc.GetSubmissionView(
		Caller{UserID: reviewer.UserID, Roles: []int{models.RoleReviewer}},
		submission.SubmissionID,
	)
	require.NoError(t, err)
	assert.Empty(t, view.Files)
	require.Len(t, view.Reviews, 2)
	assert.Equal(t, reviewer.UserID, view.Reviews[0].ReviewerID)
	assert.Zero(t, view.Reviews[1].ReviewerID)

	// A manager sees everything unredacted.
	view, err = svc.GetSubmissionView(managerCaller(1), submission.SubmissionID)
	require.NoError(t, err)
	assert.Len(t, view.Files, 2)
	assert.Equal(t, reviewer.UserID, view.Reviews[0].ReviewerID)
	assert.Equal(t, other.UserID, view.Reviews[1].ReviewerID)
	assert.Len(t, view.Publications, 1)

	// An unrelated user cannot see the submission at all.
	_, err = svc.GetSubmissionView(Caller{UserID: 999, Roles: []int{models.RoleAuthor}}, submission.SubmissionID)
	var denied *AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestListSubmissions_Visibility(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	mine := seedSubmission(t, db, 10)
	other := seedSubmission(t, db, 20)

	// Submitter sees only their own submission.
	visible, err := svc.ListSubmissions(Caller{UserID: 10, Roles: []int{models.RoleAuthor}}, 0)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, mine.SubmissionID, visible[0].SubmissionID)

	// Manager sees both.
	visible, err = svc.ListSubmissions(managerCaller(1), 0)
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	// Stage-assigned user sees the other submission.
	require.NoError(t, db.Create(&models.StageAssignment{
		SubmissionID: other.SubmissionID, UserID: 30,
		RoleID: models.RoleSectionEditor, StageID: models.StageExternalReview,
	}).Error)
	visible, err = svc.ListSubmissions(Caller{UserID: 30, Roles: []int{models.RoleSectionEditor}}, 0)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, other.SubmissionID, visible[0].SubmissionID)
}

func TestDeleteSubmission_Cascades(t *testing.T) {
	svc, _, _, db := setupPublicationService(t)
	submission := seedSubmission(t, db, 10)
	seedPublication(t, db, submission.SubmissionID, 1, models.PublicationStatusQueued)
	seedFile(t, db, submission.SubmissionID, models.FileStageSubmission, nil)

	require.NoError(t, svc.DeleteSubmission(managerCaller(1), submission.SubmissionID))

	var count int64
	db.Model(&models.Submission{}).Where("deleted_at IS NULL").Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Publication{}).Where("deleted_at IS NULL").Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ManuscriptFile{}).Where("deleted_at IS NULL").Count(&count)
	assert.Zero(t, count)
}
