package services

import (
	"errors"
	"log"
	"time"

	"editorial-workflow-api/models"

	"gorm.io/gorm"
)

// FileService validates and executes stage transitions for manuscript
// files: upload, edit, stage copy and delete, including review-round
// binding. Variant-group bookkeeping is delegated to VariantService.
type FileService struct {
	db       *gorm.DB
	blobs    BlobStore
	variants *VariantService
}

func NewFileService(db *gorm.DB, blobs BlobStore, variants *VariantService) *FileService {
	return &FileService{db: db, blobs: blobs, variants: variants}
}

// UploadRequest carries a validated upload. SourcePath points at the
// transport layer's temporary copy of the payload.
type UploadRequest struct {
	FileStage     int
	SourcePath    string
	OriginalName  string
	MimeType      string
	FileSize      int64
	GenreID       int
	Name          string
	Caption       *string
	AssocType     int
	ReviewRoundID *int
}

// FileChanges is the change set accepted by Edit. A non-empty
// NewPayloadPath replaces the stored payload and reassigns the uploader.
type FileChanges struct {
	Name           *string
	Caption        *string
	GenreID        *int
	NewPayloadPath string
}

// Upload stores the payload, validates stage placement and creates the
// file record. The payload is stored before validation, so every
// validation failure deletes the stored blob again (best effort) before
// the error is returned.
func (s *FileService) Upload(caller Caller, submissionID int, req UploadRequest) (*models.ManuscriptFile, error) {
	var submission models.Submission
	if err := s.db.Where("submission_id = ? AND deleted_at IS NULL", submissionID).First(&submission).Error; err != nil {
		return nil, &NotFoundError{Entity: "submission", ID: submissionID}
	}

	// Internal stages fall through to placement validation, which rejects
	// them with a field error after the payload is stored and compensated.
	if !models.IsInternalFileStage(req.FileStage) && !FileStageAccess(caller, req.FileStage, AccessModeModify) {
		return nil, &AccessDeniedError{UserID: caller.UserID, FileStage: req.FileStage}
	}

	blobID, err := s.blobs.Put(req.SourcePath)
	if err != nil {
		return nil, err
	}

	if err := s.validatePlacement(submissionID, req.FileStage, req.AssocType, req.ReviewRoundID); err != nil {
		s.compensateBlob(blobID)
		return nil, err
	}
	if req.Name == "" {
		s.compensateBlob(blobID)
		return nil, NewValidationError("name", "a file name is required")
	}

	now := time.Now()
	file := models.ManuscriptFile{
		SubmissionID:   submissionID,
		FileStage:      req.FileStage,
		ReviewRoundID:  req.ReviewRoundID,
		GenreID:        req.GenreID,
		UploaderUserID: caller.UserID,
		BlobID:         blobID,
		OriginalName:   req.OriginalName,
		Name:           req.Name,
		Caption:        req.Caption,
		MimeType:       req.MimeType,
		FileSize:       req.FileSize,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.db.Create(&file).Error; err != nil {
		s.compensateBlob(blobID)
		return nil, err
	}

	return &file, nil
}

// Edit applies metadata changes and optionally replaces the payload.
// Common fields of grouped files are re-applied to every sibling.
func (s *FileService) Edit(caller Caller, fileID int, changes FileChanges) error {
	file, err := s.getFile(fileID)
	if err != nil {
		return err
	}
	if !FileStageAccess(caller, file.FileStage, AccessModeModify) {
		return &AccessDeniedError{UserID: caller.UserID, FileStage: file.FileStage}
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	changedFields := make(map[string]interface{})

	if changes.Name != nil {
		if *changes.Name == "" {
			return NewValidationError("name", "a file name is required")
		}
		updates["name"] = *changes.Name
		changedFields["name"] = *changes.Name
	}
	if changes.Caption != nil {
		updates["caption"] = *changes.Caption
		changedFields["caption"] = *changes.Caption
	}
	if changes.GenreID != nil {
		updates["genre_id"] = *changes.GenreID
	}

	oldBlobID := ""
	if changes.NewPayloadPath != "" {
		blobID, err := s.blobs.Put(changes.NewPayloadPath)
		if err != nil {
			return err
		}
		oldBlobID = file.BlobID
		updates["blob_id"] = blobID
		updates["uploader_user_id"] = caller.UserID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ManuscriptFile{}).
			Where("file_id = ?", fileID).
			Updates(updates).Error; err != nil {
			return err
		}
		if file.VariantGroupID != nil && len(changedFields) > 0 {
			return s.variants.applyCommonFields(tx, *file.VariantGroupID, fileID, changedFields)
		}
		return nil
	})
	if err != nil {
		if newBlob, ok := updates["blob_id"].(string); ok {
			s.compensateBlob(newBlob)
		}
		return err
	}

	if oldBlobID != "" {
		s.deleteBlobIfUnreferenced(oldBlobID)
	}
	return nil
}

// Copy duplicates the file's metadata into a new record in toFileStage. A
// copy into a review stage binds to the supplied round, or to the latest
// round of the matching review stage when none is supplied.
func (s *FileService) Copy(caller Caller, fileID, toFileStage int, reviewRoundID *int) (*models.ManuscriptFile, error) {
	file, err := s.getFile(fileID)
	if err != nil {
		return nil, err
	}
	if !FileStageAccess(caller, toFileStage, AccessModeModify) {
		return nil, &AccessDeniedError{UserID: caller.UserID, FileStage: toFileStage}
	}

	if models.IsReviewFileStage(toFileStage) {
		if reviewRoundID == nil {
			resolved, err := s.latestReviewRound(file.SubmissionID, models.ReviewStageIDFor(toFileStage))
			if err != nil {
				return nil, err
			}
			reviewRoundID = &resolved.ReviewRoundID
		} else if err := s.validateReviewRound(file.SubmissionID, toFileStage, *reviewRoundID); err != nil {
			return nil, err
		}
	} else {
		reviewRoundID = nil
	}

	now := time.Now()
	copied := models.ManuscriptFile{
		SubmissionID:   file.SubmissionID,
		FileStage:      toFileStage,
		ReviewRoundID:  reviewRoundID,
		GenreID:        file.GenreID,
		UploaderUserID: caller.UserID,
		BlobID:         file.BlobID,
		OriginalName:   file.OriginalName,
		Name:           file.Name,
		Caption:        file.Caption,
		MimeType:       file.MimeType,
		FileSize:       file.FileSize,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.db.Create(&copied).Error; err != nil {
		return nil, err
	}
	return &copied, nil
}

// Delete soft deletes the file, dissolving its variant group when the
// group would be left with a single member. The blob is removed once no
// live file references it; blob removal is best effort.
func (s *FileService) Delete(caller Caller, fileID int) error {
	file, err := s.getFile(fileID)
	if err != nil {
		return err
	}
	if !FileStageAccess(caller, file.FileStage, AccessModeModify) {
		return &AccessDeniedError{UserID: caller.UserID, FileStage: file.FileStage}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.ManuscriptFile{}).
			Where("file_id = ?", fileID).
			Updates(map[string]interface{}{"deleted_at": now, "updated_at": now}).Error; err != nil {
			return err
		}
		if file.VariantGroupID != nil {
			return s.variants.cleanupAfterDelete(tx, *file.VariantGroupID, file.SubmissionID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deleteBlobIfUnreferenced(file.BlobID)
	return nil
}

// GetFile loads a live file the caller may read.
func (s *FileService) GetFile(caller Caller, fileID int) (*models.ManuscriptFile, error) {
	file, err := s.getFile(fileID)
	if err != nil {
		return nil, err
	}
	if !FileStageAccess(caller, file.FileStage, AccessModeRead) {
		return nil, &AccessDeniedError{UserID: caller.UserID, FileStage: file.FileStage}
	}
	return file, nil
}

// ListFiles returns the submission's live files in stages the caller may read.
func (s *FileService) ListFiles(caller Caller, submissionID int) ([]models.ManuscriptFile, error) {
	stages := AccessibleFileStages(caller, AccessModeRead)
	if len(stages) == 0 {
		return []models.ManuscriptFile{}, nil
	}

	var files []models.ManuscriptFile
	if err := s.db.
		Where("submission_id = ? AND deleted_at IS NULL AND file_stage IN ?", submissionID, stages).
		Order("file_stage, created_at").
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (s *FileService) getFile(fileID int) (*models.ManuscriptFile, error) {
	var file models.ManuscriptFile
	if err := s.db.Where("file_id = ? AND deleted_at IS NULL", fileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "file", ID: fileID}
		}
		return nil, err
	}
	return &file, nil
}

// validatePlacement enforces the stage rules for a new file: internal
// stages are rejected outright, review stages must bind to a round of the
// matching review stage on the same submission.
func (s *FileService) validatePlacement(submissionID, fileStage, assocType int, reviewRoundID *int) error {
	if models.IsInternalFileStage(fileStage) {
		return NewValidationError("file_stage", "files cannot be uploaded to this stage")
	}
	if _, known := fileStageWorkflowStage[fileStage]; !known {
		return NewValidationError("file_stage", "unknown file stage")
	}

	if models.IsReviewFileStage(fileStage) {
		if assocType != models.AssocTypeReviewRound || reviewRoundID == nil {
			return NewValidationError("review_round_id", "review files must belong to a review round")
		}
		return s.validateReviewRound(submissionID, fileStage, *reviewRoundID)
	}

	if reviewRoundID != nil {
		return NewValidationError("review_round_id", "only review files may reference a review round")
	}
	return nil
}

func (s *FileService) validateReviewRound(submissionID, fileStage, reviewRoundID int) error {
	var round models.ReviewRound
	if err := s.db.Where("review_round_id = ?", reviewRoundID).First(&round).Error; err != nil {
		return NewValidationError("review_round_id", "review round not found")
	}
	if round.SubmissionID != submissionID {
		return NewValidationError("review_round_id", "review round belongs to another submission")
	}
	if round.StageID != models.ReviewStageIDFor(fileStage) {
		return NewValidationError("review_round_id", "review round stage does not match the file stage")
	}
	return nil
}

func (s *FileService) latestReviewRound(submissionID, stageID int) (*models.ReviewRound, error) {
	var round models.ReviewRound
	err := s.db.
		Where("submission_id = ? AND stage_id = ?", submissionID, stageID).
		Order("round DESC").
		First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &MissingReviewRoundError{SubmissionID: submissionID, StageID: stageID}
		}
		return nil, err
	}
	return &round, nil
}

// compensateBlob removes a blob written before a failed operation. The
// primary error already explains the failure, so this never escalates.
func (s *FileService) compensateBlob(blobID string) {
	if err := s.blobs.Delete(blobID); err != nil {
		log.Printf("Warning: failed to delete blob %s: %v", blobID, err)
	}
}

// deleteBlobIfUnreferenced removes the blob once no live file row points
// at it. Stage copies share blobs, so the count gate is required.
func (s *FileService) deleteBlobIfUnreferenced(blobID string) {
	var count int64
	if err := s.db.Model(&models.ManuscriptFile{}).
		Where("blob_id = ? AND deleted_at IS NULL", blobID).
		Count(&count).Error; err != nil {
		log.Printf("Warning: failed to count blob references for %s: %v", blobID, err)
		return
	}
	if count == 0 {
		s.compensateBlob(blobID)
	}
}

// fileStageWorkflowStage maps every uploadable file stage onto its
// workflow stage.
var fileStageWorkflowStage = map[int]int{
	models.FileStageSubmission:             models.StageSubmission,
	models.FileStageInternalReviewFile:     models.StageInternalReview,
	models.FileStageInternalReviewRevision: models.StageInternalReview,
	models.FileStageReviewFile:             models.StageExternalReview,
	models.FileStageReviewRevision:         models.StageExternalReview,
	models.FileStageFinal:                  models.StageCopyediting,
	models.FileStageCopyedit:               models.StageCopyediting,
	models.FileStageProductionReady:        models.StageProduction,
	models.FileStageProof:                  models.StageProduction,
	models.FileStageMedia:                  models.StageProduction,
}
