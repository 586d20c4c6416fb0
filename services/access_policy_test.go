package services

import (
	"testing"

	"editorial-workflow-api/models"

	"github.com/stretchr/testify/assert"
)

func assignment(roleID, stageID int, recommendOnly bool) models.StageAssignment {
	return models.StageAssignment{
		SubmissionID:  1,
		UserID:        10,
		RoleID:        roleID,
		StageID:       stageID,
		RecommendOnly: recommendOnly,
	}
}

func TestFileStageAccess_BypassRoles(t *testing.T) {
	manager := Caller{UserID: 1, Roles: []int{models.RoleManager}}
	admin := Caller{UserID: 2, Roles: []int{models.RoleSiteAdmin}}

	for _, stage := range []int{
		models.FileStageSubmission,
		models.FileStageReviewFile,
		models.FileStageCopyedit,
		models.FileStageMedia,
	} {
		assert.True(t, FileStageAccess(manager, stage, AccessModeRead), "manager read stage %d", stage)
		assert.True(t, FileStageAccess(manager, stage, AccessModeModify), "manager modify stage %d", stage)
		assert.True(t, FileStageAccess(admin, stage, AccessModeModify), "admin modify stage %d", stage)
	}
}

func TestFileStageAccess_InternalStagesAlwaysDenied(t *testing.T) {
	manager := Caller{UserID: 1, Roles: []int{models.RoleManager}}
	assigned := Caller{
		UserID: 2,
		Roles:  []int{models.RoleSectionEditor},
		StageAssignments: []models.StageAssignment{
			assignment(models.RoleSectionEditor, models.StageExternalReview, false),
		},
	}

	for _, stage := range models.InternalFileStages {
		assert.False(t, FileStageAccess(manager, stage, AccessModeRead), "manager stage %d", stage)
		assert.False(t, FileStageAccess(assigned, stage, AccessModeRead), "assigned stage %d", stage)
	}
}

func TestFileStageAccess_DerivedFromAssignments(t *testing.T) {
	caller := Caller{
		UserID: 3,
		Roles:  []int{models.RoleSectionEditor},
		StageAssignments: []models.StageAssignment{
			assignment(models.RoleSectionEditor, models.StageExternalReview, false),
		},
	}

	assert.True(t, FileStageAccess(caller, models.FileStageReviewFile, AccessModeRead))
	assert.True(t, FileStageAccess(caller, models.FileStageReviewRevision, AccessModeModify))

	// Stages outside the assignment are denied.
	assert.False(t, FileStageAccess(caller, models.FileStageSubmission, AccessModeRead))
	assert.False(t, FileStageAccess(caller, models.FileStageInternalReviewFile, AccessModeRead))
	assert.False(t, FileStageAccess(caller, models.FileStageProof, AccessModeModify))
}

func TestFileStageAccess_RecommendOnlyBlocksModify(t *testing.T) {
	caller := Caller{
		UserID: 4,
		Roles:  []int{models.RoleSectionEditor},
		StageAssignments: []models.StageAssignment{
			assignment(models.RoleSectionEditor, models.StageCopyediting, true),
		},
	}

	assert.True(t, FileStageAccess(caller, models.FileStageCopyedit, AccessModeRead))
	assert.False(t, FileStageAccess(caller, models.FileStageCopyedit, AccessModeModify))
}

func TestFileStageAccess_NoAssignmentsNoBypass(t *testing.T) {
	caller := Caller{UserID: 5, Roles: []int{models.RoleAuthor}}

	for stage := models.FileStageSubmission; stage <= models.FileStageReviewAttachment; stage++ {
		assert.False(t, FileStageAccess(caller, stage, AccessModeRead), "stage %d", stage)
		assert.False(t, FileStageAccess(caller, stage, AccessModeModify), "stage %d", stage)
	}
}

func TestAccessibleFileStages(t *testing.T) {
	manager := Caller{UserID: 1, Roles: []int{models.RoleManager}}
	assert.Len(t, AccessibleFileStages(manager, AccessModeRead), 10)

	production := Caller{
		UserID: 6,
		Roles:  []int{models.RoleAssistant},
		StageAssignments: []models.StageAssignment{
			assignment(models.RoleAssistant, models.StageProduction, false),
		},
	}
	assert.ElementsMatch(t,
		[]int{models.FileStageProductionReady, models.FileStageProof, models.FileStageMedia},
		AccessibleFileStages(production, AccessModeModify))

	nobody := Caller{UserID: 7, Roles: []int{models.RoleAuthor}}
	assert.Empty(t, AccessibleFileStages(nobody, AccessModeRead))
}
