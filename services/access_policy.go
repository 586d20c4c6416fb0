package services

import (
	"editorial-workflow-api/models"
)

// Access modes for FileStageAccess.
const (
	AccessModeRead = iota
	AccessModeModify
)

// Caller is the identity the policy functions decide against. Roles are
// global role IDs; StageAssignments are the caller's assignments on the
// target submission only.
type Caller struct {
	UserID           int
	Roles            []int
	StageAssignments []models.StageAssignment
}

// stageFileStages maps a workflow stage assignment onto the file stages it
// opens up. Internal-only stages never appear here.
var stageFileStages = map[int][]int{
	models.StageSubmission:     {models.FileStageSubmission},
	models.StageInternalReview: {models.FileStageInternalReviewFile, models.FileStageInternalReviewRevision},
	models.StageExternalReview: {models.FileStageReviewFile, models.FileStageReviewRevision},
	models.StageCopyediting:    {models.FileStageFinal, models.FileStageCopyedit},
	models.StageProduction:     {models.FileStageProductionReady, models.FileStageProof, models.FileStageMedia},
}

// bypassFileStages is the full set of non-internal file stages granted to
// managers and site admins without any stage assignment.
var bypassFileStages = []int{
	models.FileStageSubmission,
	models.FileStageInternalReviewFile,
	models.FileStageInternalReviewRevision,
	models.FileStageReviewFile,
	models.FileStageReviewRevision,
	models.FileStageFinal,
	models.FileStageCopyedit,
	models.FileStageProductionReady,
	models.FileStageProof,
	models.FileStageMedia,
}

// FileStageAccess decides whether the caller may READ or MODIFY files in
// the target file stage. Pure function of the caller identity; no I/O.
func FileStageAccess(caller Caller, targetFileStage int, mode int) bool {
	// Internal stages use a separate authorization path and are never
	// granted here, not even to managers.
	if models.IsInternalFileStage(targetFileStage) {
		return false
	}

	if models.HasEditorialBypass(caller.Roles) {
		for _, stage := range bypassFileStages {
			if stage == targetFileStage {
				return true
			}
		}
		return false
	}

	for _, assignment := range caller.StageAssignments {
		if assignment.DeletedAt != nil {
			continue
		}
		if mode == AccessModeModify && assignment.RecommendOnly {
			continue
		}
		for _, stage := range stageFileStages[assignment.StageID] {
			if stage == targetFileStage {
				return true
			}
		}
	}

	return false
}

// AccessibleFileStages returns every file stage the caller may access in
// the given mode, for filtering submission views.
func AccessibleFileStages(caller Caller, mode int) []int {
	stages := make([]int, 0, len(bypassFileStages))
	for _, stage := range bypassFileStages {
		if FileStageAccess(caller, stage, mode) {
			stages = append(stages, stage)
		}
	}
	return stages
}
