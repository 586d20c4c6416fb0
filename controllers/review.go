// controllers/review.go
package controllers

import (
	"net/http"

	"editorial-workflow-api/config"
	"editorial-workflow-api/models"

	"github.com/gin-gonic/gin"
)

// GetSubmissionReviews lists the submission's review assignments with
// reviewer identities redacted per the anonymization policy
func GetSubmissionReviews(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": view.Reviews,
		"total":   len(view.Reviews),
	})
}

// GetSubmissionReviewRounds lists the submission's review rounds
func GetSubmissionReviewRounds(c *gin.Context) {
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := resolveCaller(c, submissionID)
	if !ok {
		return
	}

	// Round listing is gated the same way as the submission view.
	if _, err := pubSvc.GetSubmissionView(caller, submissionID); err != nil {
		respondServiceError(c, err)
		return
	}

	var rounds []models.ReviewRound
	if err := config.DB.
		Where("submission_id = ?", submissionID).
		Order("stage_id, round").
		Find(&rounds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review rounds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rounds":  rounds,
		"total":   len(rounds),
	})
}
