package services

import (
	"strings"

	"editorial-workflow-api/models"
	"editorial-workflow-api/utils"
)

// PublicationChanges is the validated change set accepted by
// PublicationService.Edit. Status is deliberately present so that callers
// sending it can be rejected: status moves only through publish/unpublish.
type PublicationChanges struct {
	Title     *string `json:"title"`
	Abstract  *string `json:"abstract"`
	Copyright *string `json:"copyright"`
	Locale    *string `json:"locale"`
	Status    *int    `json:"status"`
}

// validatePublicationChanges checks field-level constraints before any
// write. Returns nil when the change set is acceptable.
func validatePublicationChanges(changes PublicationChanges) *ValidationError {
	fields := make(map[string][]string)

	if changes.Title != nil && strings.TrimSpace(*changes.Title) == "" {
		fields["title"] = append(fields["title"], "title must not be empty")
	}
	if changes.Locale != nil && !utils.IsValidLocale(*changes.Locale) {
		fields["locale"] = append(fields["locale"], "unsupported locale")
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// validatePublishReadiness checks that a version carries everything a
// published record needs. Returns nil when the publication may go live.
func validatePublishReadiness(pub *models.Publication, submission *models.Submission) *ValidationError {
	fields := make(map[string][]string)

	if strings.TrimSpace(pub.Title) == "" {
		fields["title"] = append(fields["title"], "a title is required before publishing")
	}
	if pub.Locale == "" {
		fields["locale"] = append(fields["locale"], "a locale is required before publishing")
	} else if submission.Locale != "" && pub.Locale != submission.Locale {
		fields["locale"] = append(fields["locale"], "publication locale must match the submission locale")
	}
	if pub.Abstract == nil || strings.TrimSpace(*pub.Abstract) == "" {
		fields["abstract"] = append(fields["abstract"], "an abstract is required before publishing")
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
