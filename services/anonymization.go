package services

import (
	"editorial-workflow-api/models"
)

// ReviewRedactSet returns the IDs of review assignments whose reviewer
// identity and method must be hidden from the caller. Empty means full
// visibility; whether the caller may see the submission at all is decided
// upstream.
//
// Reviewers and authors on the submission see only OPEN reviews plus their
// own; everyone else (editorial roles) sees everything.
func ReviewRedactSet(caller Caller, assignments []models.ReviewAssignment) map[int]bool {
	redact := make(map[int]bool)

	if models.HasEditorialBypass(caller.Roles) {
		return redact
	}

	isReviewer := false
	for _, assignment := range assignments {
		if assignment.ReviewerID == caller.UserID {
			isReviewer = true
			break
		}
	}

	isAuthor := false
	for _, sa := range caller.StageAssignments {
		if sa.DeletedAt == nil && sa.RoleID == models.RoleAuthor {
			isAuthor = true
			break
		}
	}

	if !isReviewer && !isAuthor {
		return redact
	}

	for _, assignment := range assignments {
		if assignment.ReviewMethod == models.ReviewMethodOpen {
			continue
		}
		// A reviewer always sees their own review unredacted.
		if assignment.ReviewerID == caller.UserID {
			continue
		}
		redact[assignment.ReviewID] = true
	}

	return redact
}

// RedactReviews blanks reviewer identity and method on every assignment in
// the redact set and strips the reviewer relation, returning a filtered copy.
func RedactReviews(assignments []models.ReviewAssignment, redact map[int]bool) []models.ReviewAssignment {
	out := make([]models.ReviewAssignment, len(assignments))
	for i, assignment := range assignments {
		out[i] = assignment
		if redact[assignment.ReviewID] {
			out[i].ReviewerID = 0
			out[i].ReviewMethod = 0
			out[i].Reviewer = nil
			out[i].Comments = nil
		}
	}
	return out
}
