package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/util"
)

const testAuthSecret = "test-auth-secret-for-identity-tests"

func newTestIdentityService(userRepo *mockUserRepo, sessionRepo *mockSessionRepo, projectRepo *mockProjectRepo) *IdentityService {
	sessionSvc := NewPortalSessionService(sessionRepo, projectRepo, 24*time.Hour)
	return NewIdentityService(userRepo, sessionSvc, testAuthSecret)
}

func TestResolve_PlatformUserWins(t *testing.T) {
	token, err := util.IssueUserToken(testAuthSecret, "user-1", time.Hour)
	require.NoError(t, err)

	userRepo := new(mockUserRepo)
	userRepo.On("FindByID", mock.Anything, "user-1").Return(&model.User{ID: "user-1"}, nil)

	sessionRepo := new(mockSessionRepo)
	service := newTestIdentityService(userRepo, sessionRepo, new(mockProjectRepo))

	rc, err := service.Resolve(context.Background(), token, uuid.NewString())
	require.NoError(t, err)
	assert.True(t, rc.IsUser())
	assert.Equal(t, "user-1", rc.User.ID)

	// Valid platform token means the portal session is never consulted.
	sessionRepo.AssertNotCalled(t, "FindByID")
}

func TestResolve_StaleTokenFallsThroughToPortal(t *testing.T) {
	expired, err := util.IssueUserToken(testAuthSecret, "user-1", -time.Hour)
	require.NoError(t, err)

	sessionID := uuid.NewString()
	sessionRepo := new(mockSessionRepo)
	sessionRepo.On("FindByID", mock.Anything, sessionID).Return(&model.PortalSession{
		ID:          sessionID,
		ProjectID:   "proj-1",
		VisitorName: "Jamie",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil)

	projectRepo := new(mockProjectRepo)
	projectRepo.On("FindByID", mock.Anything, "proj-1").Return(&model.Project{
		ID:            "proj-1",
		PortalEnabled: true,
	}, nil)

	userRepo := new(mockUserRepo)
	service := newTestIdentityService(userRepo, sessionRepo, projectRepo)

	rc, err := service.Resolve(context.Background(), expired, sessionID)
	require.NoError(t, err)
	assert.True(t, rc.IsPortal())
	assert.Equal(t, "Jamie", rc.Visitor.VisitorName)
	userRepo.AssertNotCalled(t, "FindByID")
}

func TestResolve_TokenForDeletedUserFallsThrough(t *testing.T) {
	token, err := util.IssueUserToken(testAuthSecret, "user-gone", time.Hour)
	require.NoError(t, err)

	userRepo := new(mockUserRepo)
	userRepo.On("FindByID", mock.Anything, "user-gone").Return(nil, nil)

	service := newTestIdentityService(userRepo, new(mockSessionRepo), new(mockProjectRepo))

	rc, err := service.Resolve(context.Background(), token, "")
	require.NoError(t, err)
	assert.True(t, rc.IsNone())
}

func TestResolve_WrongSecretFallsThrough(t *testing.T) {
	token, err := util.IssueUserToken("some-other-secret", "user-1", time.Hour)
	require.NoError(t, err)

	userRepo := new(mockUserRepo)
	service := newTestIdentityService(userRepo, new(mockSessionRepo), new(mockProjectRepo))

	rc, err := service.Resolve(context.Background(), token, "")
	require.NoError(t, err)
	assert.True(t, rc.IsNone())
	userRepo.AssertNotCalled(t, "FindByID")
}

func TestResolve_NoCredentialsAtAll(t *testing.T) {
	service := newTestIdentityService(new(mockUserRepo), new(mockSessionRepo), new(mockProjectRepo))

	rc, err := service.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, rc.IsNone())
	assert.Nil(t, rc.User)
	assert.Nil(t, rc.Visitor)
}

func TestResolve_InvalidSessionIDIsNone(t *testing.T) {
	service := newTestIdentityService(new(mockUserRepo), new(mockSessionRepo), new(mockProjectRepo))

	rc, err := service.Resolve(context.Background(), "", "not-a-uuid")
	require.NoError(t, err)
	assert.True(t, rc.IsNone())
}

func TestResolve_UserLookupFailureIsDatabaseError(t *testing.T) {
	token, err := util.IssueUserToken(testAuthSecret, "user-1", time.Hour)
	require.NoError(t, err)

	userRepo := new(mockUserRepo)
	userRepo.On("FindByID", mock.Anything, "user-1").Return(nil, errors.New("connection refused"))

	service := newTestIdentityService(userRepo, new(mockSessionRepo), new(mockProjectRepo))

	_, err = service.Resolve(context.Background(), token, "")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDatabase, appErr.Code)
}
