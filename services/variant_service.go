package services

import (
	"errors"
	"fmt"
	"time"

	"editorial-workflow-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantService maintains the sibling grouping of media files that are
// alternate renditions of the same content. A group always holds at least
// two members; any operation that would leave one member dissolves the
// group instead.
type VariantService struct {
	db *gorm.DB
}

func NewVariantService(db *gorm.DB) *VariantService {
	return &VariantService{db: db}
}

// Link puts primary and secondary into the same variant group. Rules:
// no group on either side creates a fresh group; one existing group
// absorbs the other file; the same group on both sides is a no-op; two
// different groups are never merged implicitly.
func (s *VariantService) Link(caller Caller, primaryID, secondaryID, submissionID int) error {
	if primaryID == secondaryID {
		return NewValidationError("file_id", "a file cannot be linked to itself")
	}
	if !FileStageAccess(caller, models.FileStageMedia, AccessModeModify) {
		return &AccessDeniedError{UserID: caller.UserID, FileStage: models.FileStageMedia}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		primary, err := s.getGroupMemberCandidate(tx, primaryID, submissionID)
		if err != nil {
			return err
		}
		secondary, err := s.getGroupMemberCandidate(tx, secondaryID, submissionID)
		if err != nil {
			return err
		}

		var groupID string
		switch {
		case primary.VariantGroupID == nil && secondary.VariantGroupID == nil:
			groupID = uuid.NewString()
			if err := s.setGroup(tx, groupID, primary.FileID, secondary.FileID); err != nil {
				return err
			}
		case primary.VariantGroupID != nil && secondary.VariantGroupID == nil:
			groupID = *primary.VariantGroupID
			if err := s.setGroup(tx, groupID, secondary.FileID); err != nil {
				return err
			}
		case primary.VariantGroupID == nil && secondary.VariantGroupID != nil:
			groupID = *secondary.VariantGroupID
			if err := s.setGroup(tx, groupID, primary.FileID); err != nil {
				return err
			}
		case *primary.VariantGroupID == *secondary.VariantGroupID:
			return nil
		default:
			return &ConflictError{Reason: "files already belong to different variant groups"}
		}

		// Propagate the common fields from the most recently edited
		// member to the rest of the group.
		source := primary
		if secondary.UpdatedAt.After(primary.UpdatedAt) {
			source = secondary
		}
		return s.applyCommonFields(tx, groupID, source.FileID, map[string]interface{}{
			"name":    source.Name,
			"caption": source.Caption,
		})
	})
}

// Unlink removes the file from its group and dissolves the group when a
// single member would remain. Returns the ids of every file whose group
// membership changed.
func (s *VariantService) Unlink(caller Caller, fileID, submissionID int) ([]int, error) {
	if !FileStageAccess(caller, models.FileStageMedia, AccessModeModify) {
		return nil, &AccessDeniedError{UserID: caller.UserID, FileStage: models.FileStageMedia}
	}

	var changed []int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		file, err := s.getGroupMemberCandidate(tx, fileID, submissionID)
		if err != nil {
			return err
		}
		if file.VariantGroupID == nil {
			return NewValidationError("file_id", "file does not belong to a variant group")
		}
		groupID := *file.VariantGroupID

		if err := s.clearGroup(tx, file.FileID); err != nil {
			return err
		}
		changed = append(changed, file.FileID)

		remaining, err := s.groupMembers(tx, groupID, submissionID)
		if err != nil {
			return err
		}
		if len(remaining) == 1 {
			if err := s.clearGroup(tx, remaining[0].FileID); err != nil {
				return err
			}
			changed = append(changed, remaining[0].FileID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// ApplyMetadataToSiblings re-applies the group-common subset of
// changedFields to every sibling of the file.
func (s *VariantService) ApplyMetadataToSiblings(fileID int, changedFields map[string]interface{}, submissionID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		file, err := s.getGroupMemberCandidate(tx, fileID, submissionID)
		if err != nil {
			return err
		}
		if file.VariantGroupID == nil {
			return nil
		}
		return s.applyCommonFields(tx, *file.VariantGroupID, fileID, changedFields)
	})
}

// CleanupAfterDelete dissolves the group when exactly one member remains.
func (s *VariantService) CleanupAfterDelete(variantGroupID string, submissionID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.cleanupAfterDelete(tx, variantGroupID, submissionID)
	})
}

// cleanupAfterDelete is the transaction-scoped form used by FileService
// inside its own delete transaction.
func (s *VariantService) cleanupAfterDelete(tx *gorm.DB, variantGroupID string, submissionID int) error {
	remaining, err := s.groupMembers(tx, variantGroupID, submissionID)
	if err != nil {
		return err
	}
	if len(remaining) == 1 {
		return s.clearGroup(tx, remaining[0].FileID)
	}
	return nil
}

// applyCommonFields writes the group-common subset of changedFields to
// every member of the group except the source file. Idempotent.
func (s *VariantService) applyCommonFields(tx *gorm.DB, variantGroupID string, sourceFileID int, changedFields map[string]interface{}) error {
	updates := make(map[string]interface{})
	for _, field := range models.VariantCommonFields {
		if value, ok := changedFields[field]; ok {
			updates[field] = value
		}
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	if err := tx.Model(&models.ManuscriptFile{}).
		Where("variant_group_id = ? AND file_id <> ? AND deleted_at IS NULL", variantGroupID, sourceFileID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to propagate metadata to variant siblings: %w", err)
	}
	return nil
}

func (s *VariantService) groupMembers(tx *gorm.DB, variantGroupID string, submissionID int) ([]models.ManuscriptFile, error) {
	var members []models.ManuscriptFile
	err := tx.
		Where("variant_group_id = ? AND submission_id = ? AND deleted_at IS NULL", variantGroupID, submissionID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *VariantService) setGroup(tx *gorm.DB, groupID string, fileIDs ...int) error {
	return tx.Model(&models.ManuscriptFile{}).
		Where("file_id IN ?", fileIDs).
		Updates(map[string]interface{}{"variant_group_id": groupID, "updated_at": time.Now()}).Error
}

func (s *VariantService) clearGroup(tx *gorm.DB, fileID int) error {
	return tx.Model(&models.ManuscriptFile{}).
		Where("file_id = ?", fileID).
		Updates(map[string]interface{}{"variant_group_id": nil, "updated_at": time.Now()}).Error
}

// getGroupMemberCandidate loads a live media file on the submission.
func (s *VariantService) getGroupMemberCandidate(tx *gorm.DB, fileID, submissionID int) (*models.ManuscriptFile, error) {
	var file models.ManuscriptFile
	err := tx.Where("file_id = ? AND deleted_at IS NULL", fileID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "file", ID: fileID}
		}
		return nil, err
	}
	if file.SubmissionID != submissionID {
		return nil, &NotFoundError{Entity: "file", ID: fileID}
	}
	if file.FileStage != models.FileStageMedia {
		return nil, NewValidationError("file_id", "only media files can join a variant group")
	}
	return &file, nil
}
