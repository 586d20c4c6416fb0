package services

import (
	"testing"

	"editorial-workflow-api/models"

	"github.com/stretchr/testify/assert"
)

func reviewAssignments() []models.ReviewAssignment {
	return []models.ReviewAssignment{
		{ReviewID: 1, SubmissionID: 9, ReviewerID: 100, ReviewMethod: models.ReviewMethodOpen},
		{ReviewID: 2, SubmissionID: 9, ReviewerID: 200, ReviewMethod: models.ReviewMethodAnonymous},
		{ReviewID: 3, SubmissionID: 9, ReviewerID: 300, ReviewMethod: models.ReviewMethodDoubleAnonymous},
	}
}

func TestReviewRedactSet_EditorialFullVisibility(t *testing.T) {
	editor := Caller{UserID: 1, Roles: []int{models.RoleManager}}
	assert.Empty(t, ReviewRedactSet(editor, reviewAssignments()))

	// Unrelated non-bypass users are neither reviewers nor authors here,
	// so nothing is redacted for them either.
	other := Caller{UserID: 2, Roles: []int{models.RoleSectionEditor}}
	assert.Empty(t, ReviewRedactSet(other, reviewAssignments()))
}

func TestReviewRedactSet_ReviewerSeesOwnAndOpen(t *testing.T) {
	reviewer := Caller{UserID: 200, Roles: []int{models.RoleReviewer}}

	redact := ReviewRedactSet(reviewer, reviewAssignments())

	assert.False(t, redact[1], "open review must stay visible")
	assert.False(t, redact[2], "own review must stay visible")
	assert.True(t, redact[3], "other non-open review must be redacted")
}

func TestReviewRedactSet_AuthorSeesOnlyOpen(t *testing.T) {
	author := Caller{
		UserID: 42,
		Roles:  []int{models.RoleAuthor},
		StageAssignments: []models.StageAssignment{
			{SubmissionID: 9, UserID: 42, RoleID: models.RoleAuthor, StageID: models.StageSubmission},
		},
	}

	redact := ReviewRedactSet(author, reviewAssignments())

	assert.False(t, redact[1])
	assert.True(t, redact[2])
	assert.True(t, redact[3])
}

func TestRedactReviews_BlanksIdentity(t *testing.T) {
	comments := "solid work"
	assignments := []models.ReviewAssignment{
		{ReviewID: 1, ReviewerID: 100, ReviewMethod: models.ReviewMethodAnonymous, Comments: &comments,
			Reviewer: &models.User{UserID: 100}},
		{ReviewID: 2, ReviewerID: 200, ReviewMethod: models.ReviewMethodOpen, Comments: &comments},
	}

	out := RedactReviews(assignments, map[int]bool{1: true})

	assert.Zero(t, out[0].ReviewerID)
	assert.Zero(t, out[0].ReviewMethod)
	assert.Nil(t, out[0].Reviewer)
	assert.Nil(t, out[0].Comments)

	assert.Equal(t, 200, out[1].ReviewerID)
	assert.NotNil(t, out[1].Comments)

	// Input is untouched.
	assert.Equal(t, 100, assignments[0].ReviewerID)
}
