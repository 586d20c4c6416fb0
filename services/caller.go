package services

import (
	"strings"

	"editorial-workflow-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolveCaller builds the policy-facing identity for a request: the
// user's global roles plus their stage assignments on the target
// submission. Pass submissionID 0 for operations without a submission
// scope.
func ResolveCaller(db *gorm.DB, userID, roleID, submissionID int) (Caller, error) {
	caller := Caller{UserID: userID, Roles: []int{roleID}}

	if submissionID != 0 {
		var assignments []models.StageAssignment
		if err := db.
			Where("submission_id = ? AND user_id = ? AND deleted_at IS NULL", submissionID, userID).
			Find(&assignments).Error; err != nil {
			return caller, err
		}
		caller.StageAssignments = assignments
	}

	return caller, nil
}

func shortID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
