package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
)

func userContext(id string) model.ResolvedContext {
	return model.ResolvedUser(&model.User{ID: id})
}

func visitorContext(projectID, name string) model.ResolvedContext {
	return model.ResolvedVisitor(&model.PortalSession{
		ID:          "session-1",
		ProjectID:   projectID,
		VisitorName: name,
		ExpiresAt:   time.Now().Add(time.Hour),
	})
}

func strPtr(s string) *string { return &s }

func TestAuthorize_OwnerReadsAndWrites(t *testing.T) {
	rc := userContext("owner-1")

	for _, op := range []Operation{OpRead, OpCreate} {
		err := Authorize(rc, Action{
			Resource:       model.ResourceMessage,
			Operation:      op,
			ProjectID:      "proj-1",
			ProjectOwnerID: "owner-1",
		})
		assert.NoError(t, err, "owner should pass %s", op)
	}
}

func TestAuthorize_NonOwnerUserForbidden(t *testing.T) {
	rc := userContext("other-user")

	err := Authorize(rc, Action{
		Resource:       model.ResourceMessage,
		Operation:      OpRead,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeForbidden, appErr.Code)
}

func TestAuthorize_VisitorBoundToOwnProject(t *testing.T) {
	rc := visitorContext("proj-1", "Jamie")

	err := Authorize(rc, Action{
		Resource:       model.ResourceMessage,
		Operation:      OpRead,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
	})
	assert.NoError(t, err)

	err = Authorize(rc, Action{
		Resource:       model.ResourceMessage,
		Operation:      OpRead,
		ProjectID:      "proj-2",
		ProjectOwnerID: "owner-1",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthorize_UnauthenticatedDenied(t *testing.T) {
	err := Authorize(model.ResolvedNone(), Action{
		Resource:       model.ResourceMessage,
		Operation:      OpRead,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthorize_UserEditsOwnContent(t *testing.T) {
	rc := userContext("owner-1")

	err := Authorize(rc, Action{
		Resource:       model.ResourceMessage,
		Operation:      OpUpdate,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
		Authorship:     &model.Authorship{AuthorUserID: strPtr("owner-1")},
	})
	assert.NoError(t, err)
}

func TestAuthorize_UserCannotEditVisitorContent(t *testing.T) {
	rc := userContext("owner-1")

	err := Authorize(rc, Action{
		Resource:       model.ResourceComment,
		Operation:      OpDelete,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
		Authorship:     &model.Authorship{AuthorName: strPtr("Jamie")},
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeForbidden, appErr.Code)
}

func TestAuthorize_VisitorEditsMatchingName(t *testing.T) {
	rc := visitorContext("proj-1", "Jamie")

	err := Authorize(rc, Action{
		Resource:       model.ResourceComment,
		Operation:      OpUpdate,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
		Authorship:     &model.Authorship{AuthorName: strPtr("Jamie")},
	})
	assert.NoError(t, err)
}

// Two visitors who picked the same display name are indistinguishable.
// Name equality is the entire authorship check for portal content.
func TestAuthorize_SameNameVisitorEditsOthersContent(t *testing.T) {
	secondVisitor := visitorContext("proj-1", "Jamie")

	err := Authorize(secondVisitor, Action{
		Resource:       model.ResourceComment,
		Operation:      OpDelete,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
		Authorship:     &model.Authorship{AuthorName: strPtr("Jamie")},
	})
	assert.NoError(t, err)
}

func TestAuthorize_VisitorCannotEditOtherNames(t *testing.T) {
	rc := visitorContext("proj-1", "Jamie")

	err := Authorize(rc, Action{
		Resource:       model.ResourceComment,
		Operation:      OpUpdate,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
		Authorship:     &model.Authorship{AuthorName: strPtr("Alex")},
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, appErr.Code)
}

func TestAuthorize_VisitorCannotEditUserContent(t *testing.T) {
	rc := visitorContext("proj-1", "Jamie")

	err := Authorize(rc, Action{
		Resource:       model.ResourceMessage,
		Operation:      OpDelete,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
		Authorship:     &model.Authorship{AuthorUserID: strPtr("owner-1")},
	})
	require.Error(t, err)
}

func TestAuthorize_MutationWithoutAuthorshipDenied(t *testing.T) {
	rc := userContext("owner-1")

	err := Authorize(rc, Action{
		Resource:       model.ResourceMessage,
		Operation:      OpUpdate,
		ProjectID:      "proj-1",
		ProjectOwnerID: "owner-1",
	})
	require.Error(t, err)
}

func TestAuthorshipFor(t *testing.T) {
	userMarker := AuthorshipFor(userContext("user-1"))
	require.NotNil(t, userMarker.AuthorUserID)
	assert.Equal(t, "user-1", *userMarker.AuthorUserID)
	assert.Nil(t, userMarker.AuthorName)

	visitorMarker := AuthorshipFor(visitorContext("proj-1", "Jamie"))
	require.NotNil(t, visitorMarker.AuthorName)
	assert.Equal(t, "Jamie", *visitorMarker.AuthorName)
	assert.Nil(t, visitorMarker.AuthorUserID)

	noneMarker := AuthorshipFor(model.ResolvedNone())
	assert.Nil(t, noneMarker.AuthorUserID)
	assert.Nil(t, noneMarker.AuthorName)
}
