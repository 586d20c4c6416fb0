// controllers/submission.go
package controllers

import (
	"net/http"
	"strconv"

	"editorial-workflow-api/config"
	"editorial-workflow-api/services"
	"editorial-workflow-api/utils"

	"github.com/gin-gonic/gin"
)

// resolveCaller builds the policy-facing identity for the current request.
func resolveCaller(c *gin.Context, submissionID int) (services.Caller, bool) {
	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	caller, err := services.ResolveCaller(config.DB, userID.(int), roleID.(int), submissionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve caller"})
		return services.Caller{}, false
	}
	return caller, true
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// GetSubmissions returns submissions visible to the caller
func GetSubmissions(c *gin.Context) {
	caller, ok := resolveCaller(c, 0)
	if !ok {
		return
	}

	contextID := 0
	if raw := c.Query("context_id"); raw != "" {
		contextID, _ = strconv.Atoi(raw)
	}

	submissions, err := pubSvc.ListSubmissions(caller, contextID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns the full submission view: versions, accessible
// files and anonymized reviews
func GetSubmission(c *gin.Context) {
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := resolveCaller(c, submissionID)
	if !ok {
		return
	}

	view, err := pubSvc.GetSubmissionView(caller, submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Attach display labels for the frontend
	fileStages := make(map[int]string)
	for _, file := range view.Files {
		fileStages[file.FileStage] = utils.FileStageName(file.FileStage)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"submission":       view.Submission,
		"publications":     view.Publications,
		"files":            view.Files,
		"reviews":          view.Reviews,
		"file_stage_names": fileStages,
	})
}

// CreateSubmission creates a new submission with its first version
func CreateSubmission(c *gin.Context) {
	caller, ok := resolveCaller(c, 0)
	if !ok {
		return
	}

	type CreateSubmissionRequest struct {
		ContextID int     `json:"context_id" binding:"required"`
		Locale    string  `json:"locale" binding:"required"`
		Title     string  `json:"title" binding:"required"`
		Abstract  *string `json:"abstract"`
	}

	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, publication, err := pubSvc.Add(caller, services.AddSubmissionRequest{
		ContextID: req.ContextID,
		Locale:    req.Locale,
		Title:     utils.SanitizeInput(req.Title),
		Abstract:  req.Abstract,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Submission created successfully",
		"submission":  submission,
		"publication": publication,
	})
}

// DeleteSubmission soft deletes a submission and everything it owns
func DeleteSubmission(c *gin.Context) {
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := resolveCaller(c, submissionID)
	if !ok {
		return
	}

	if err := pubSvc.DeleteSubmission(caller, submissionID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Submission deleted successfully",
	})
}
