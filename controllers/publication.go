// controllers/publication.go
package controllers

import (
	"errors"
	"net/http"

	"editorial-workflow-api/config"
	"editorial-workflow-api/models"
	"editorial-workflow-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// publicationCaller resolves the caller scoped to the publication's
// submission so stage assignments apply.
func publicationCaller(c *gin.Context, publicationID int) (services.Caller, bool) {
	var pub models.Publication
	err := config.DB.Where("publication_id = ? AND deleted_at IS NULL", publicationID).First(&pub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load publication"})
		}
		return services.Caller{}, false
	}
	return resolveCaller(c, pub.SubmissionID)
}

// CreatePublicationVersion clones a publication into a new version
func CreatePublicationVersion(c *gin.Context) {
	publicationID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := publicationCaller(c, publicationID)
	if !ok {
		return
	}

	version, err := pubSvc.CreateVersion(caller, publicationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "New version created successfully",
		"publication": version,
	})
}

// UpdatePublication edits a non-published version
func UpdatePublication(c *gin.Context) {
	publicationID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := publicationCaller(c, publicationID)
	if !ok {
		return
	}

	var changes services.PublicationChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := pubSvc.Edit(caller, publicationID, changes); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Publication updated successfully",
	})
}

// PublishPublication transitions a version to PUBLISHED
func PublishPublication(c *gin.Context) {
	publicationID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := publicationCaller(c, publicationID)
	if !ok {
		return
	}

	if err := pubSvc.Publish(caller, publicationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Publication published successfully",
	})
}

// UnpublishPublication moves a published or scheduled version back to QUEUED
func UnpublishPublication(c *gin.Context) {
	publicationID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := publicationCaller(c, publicationID)
	if !ok {
		return
	}

	if err := pubSvc.Unpublish(caller, publicationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Publication unpublished successfully",
	})
}

// SchedulePublication marks a ready version for scheduled publishing
func SchedulePublication(c *gin.Context) {
	publicationID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := publicationCaller(c, publicationID)
	if !ok {
		return
	}

	if err := pubSvc.Schedule(caller, publicationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Publication scheduled successfully",
	})
}

// DeclinePublication marks a version as declined (terminal)
func DeclinePublication(c *gin.Context) {
	publicationID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := publicationCaller(c, publicationID)
	if !ok {
		return
	}

	if err := pubSvc.Decline(caller, publicationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Publication declined",
	})
}

// DeletePublication removes a non-published version
func DeletePublication(c *gin.Context) {
	publicationID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, ok := publicationCaller(c, publicationID)
	if !ok {
		return
	}

	if err := pubSvc.Delete(caller, publicationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Publication deleted successfully",
	})
}
