package utils

import "editorial-workflow-api/models"

// Display labels for enumerated workflow values, used by API responses.

var workflowStageNames = map[int]string{
	models.StageSubmission:     "Submission",
	models.StageInternalReview: "Internal Review",
	models.StageExternalReview: "External Review",
	models.StageCopyediting:    "Copyediting",
	models.StageProduction:     "Production",
}

var fileStageNames = map[int]string{
	models.FileStageSubmission:             "Submission File",
	models.FileStageInternalReviewFile:     "Internal Review File",
	models.FileStageInternalReviewRevision: "Internal Review Revision",
	models.FileStageReviewFile:             "Review File",
	models.FileStageReviewRevision:         "Review Revision",
	models.FileStageFinal:                  "Final Draft",
	models.FileStageCopyedit:               "Copyedited File",
	models.FileStageProductionReady:        "Production Ready",
	models.FileStageProof:                  "Proof",
	models.FileStageMedia:                  "Media",
	models.FileStageNote:                   "Note Attachment",
	models.FileStageQueryAttachment:        "Discussion Attachment",
	models.FileStageReviewAttachment:       "Reviewer Attachment",
}

var publicationStatusNames = map[int]string{
	models.PublicationStatusQueued:    "Queued",
	models.PublicationStatusScheduled: "Scheduled",
	models.PublicationStatusPublished: "Published",
	models.PublicationStatusDeclined:  "Declined",
}

// WorkflowStageName returns the display label of a workflow stage.
func WorkflowStageName(stageID int) string {
	if name, ok := workflowStageNames[stageID]; ok {
		return name
	}
	return "Unknown"
}

// FileStageName returns the display label of a file stage.
func FileStageName(fileStage int) string {
	if name, ok := fileStageNames[fileStage]; ok {
		return name
	}
	return "Unknown"
}

// PublicationStatusName returns the display label of a publication status.
func PublicationStatusName(status int) string {
	if name, ok := publicationStatusNames[status]; ok {
		return name
	}
	return "Unknown"
}
