package services

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level validation failures. Keys are field
// names, values are error message keys the API layer can render.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// NotFoundError reports an absent entity by kind and id.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ImmutableStateError reports an operation forbidden by the entity's
// current lifecycle state.
type ImmutableStateError struct {
	Reason string
}

func (e *ImmutableStateError) Error() string {
	return e.Reason
}

// AlreadyPublishedError reports a publish call against a version that is
// already published.
type AlreadyPublishedError struct {
	PublicationID int
}

func (e *AlreadyPublishedError) Error() string {
	return fmt.Sprintf("publication %d is already published", e.PublicationID)
}

// NotPublishedError reports an unpublish call against a version that is
// neither published nor scheduled.
type NotPublishedError struct {
	PublicationID int
}

func (e *NotPublishedError) Error() string {
	return fmt.Sprintf("publication %d is not published", e.PublicationID)
}

// ConflictError reports an irreconcilable state conflict, e.g. linking two
// files that already belong to different variant groups.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// MissingReviewRoundError reports a stage copy into a review stage when no
// round of the matching category exists.
type MissingReviewRoundError struct {
	SubmissionID int
	StageID      int
}

func (e *MissingReviewRoundError) Error() string {
	return fmt.Sprintf("submission %d has no review round for stage %d", e.SubmissionID, e.StageID)
}

// AccessDeniedError reports a DENY decision from the file stage access policy.
type AccessDeniedError struct {
	UserID    int
	FileStage int
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("user %d may not access file stage %d", e.UserID, e.FileStage)
}
