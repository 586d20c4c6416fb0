package controllers

import (
	"errors"
	"net/http"

	"editorial-workflow-api/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// validation failures are 400, lifecycle/permission conflicts 403, absent
// entities 404, everything else 500.
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "fields": validation.Fields})
		return
	}

	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}
	var missingRound *services.MissingReviewRoundError
	if errors.As(err, &missingRound) {
		c.JSON(http.StatusNotFound, gin.H{"error": missingRound.Error()})
		return
	}

	var immutable *services.ImmutableStateError
	var alreadyPublished *services.AlreadyPublishedError
	var notPublished *services.NotPublishedError
	var conflict *services.ConflictError
	var denied *services.AccessDeniedError
	if errors.As(err, &immutable) || errors.As(err, &alreadyPublished) ||
		errors.As(err, &notPublished) || errors.As(err, &conflict) || errors.As(err, &denied) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
