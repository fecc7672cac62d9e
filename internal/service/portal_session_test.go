package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
)

func TestIssue_Success(t *testing.T) {
	sessionRepo := new(mockSessionRepo)
	projectRepo := new(mockProjectRepo)

	projectRepo.On("FindByID", mock.Anything, "proj-1").Return(&model.Project{
		ID:            "proj-1",
		PortalEnabled: true,
	}, nil)

	sessionRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreatePortalSessionParams) bool {
		return p.ProjectID == "proj-1" && p.VisitorName == "Jamie" && p.ExpiresAt.After(time.Now())
	})).Return(&model.PortalSession{
		ID:          uuid.NewString(),
		ProjectID:   "proj-1",
		VisitorName: "Jamie",
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}, nil)

	service := NewPortalSessionService(sessionRepo, projectRepo, 24*time.Hour)

	session, err := service.Issue(context.Background(), "proj-1", "Jamie", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "proj-1", session.ProjectID)
	assert.Equal(t, "Jamie", session.VisitorName)
}

func TestIssue_TrimsVisitorName(t *testing.T) {
	sessionRepo := new(mockSessionRepo)
	projectRepo := new(mockProjectRepo)

	projectRepo.On("FindByID", mock.Anything, "proj-1").Return(&model.Project{
		ID:            "proj-1",
		PortalEnabled: true,
	}, nil)

	sessionRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreatePortalSessionParams) bool {
		return p.VisitorName == "Jamie"
	})).Return(&model.PortalSession{VisitorName: "Jamie", ExpiresAt: time.Now().Add(time.Hour)}, nil)

	service := NewPortalSessionService(sessionRepo, projectRepo, 24*time.Hour)

	session, err := service.Issue(context.Background(), "proj-1", "  Jamie  ", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Jamie", session.VisitorName)
}

func TestIssue_RejectsShortVisitorName(t *testing.T) {
	service := NewPortalSessionService(new(mockSessionRepo), new(mockProjectRepo), 24*time.Hour)

	_, err := service.Issue(context.Background(), "proj-1", "Jo", nil, nil)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
}

func TestIssue_PortalDisabled(t *testing.T) {
	projectRepo := new(mockProjectRepo)
	projectRepo.On("FindByID", mock.Anything, "proj-1").Return(&model.Project{
		ID:            "proj-1",
		PortalEnabled: false,
	}, nil)

	service := NewPortalSessionService(new(mockSessionRepo), projectRepo, 24*time.Hour)

	_, err := service.Issue(context.Background(), "proj-1", "Jamie", nil, nil)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePortalDisabled, appErr.Code)
}

func TestIssue_UnknownProject(t *testing.T) {
	projectRepo := new(mockProjectRepo)
	projectRepo.On("FindByID", mock.Anything, "proj-1").Return(nil, nil)

	service := NewPortalSessionService(new(mockSessionRepo), projectRepo, 24*time.Hour)

	_, err := service.Issue(context.Background(), "proj-1", "Jamie", nil, nil)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestValidate_Success(t *testing.T) {
	sessionID := uuid.NewString()

	sessionRepo := new(mockSessionRepo)
	sessionRepo.On("FindByID", mock.Anything, sessionID).Return(&model.PortalSession{
		ID:        sessionID,
		ProjectID: "proj-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	projectRepo := new(mockProjectRepo)
	projectRepo.On("FindByID", mock.Anything, "proj-1").Return(&model.Project{
		ID:            "proj-1",
		PortalEnabled: true,
	}, nil)

	service := NewPortalSessionService(sessionRepo, projectRepo, 24*time.Hour)

	session, err := service.Validate(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, sessionID, session.ID)
}

func TestValidate_MalformedID(t *testing.T) {
	sessionRepo := new(mockSessionRepo)
	service := NewPortalSessionService(sessionRepo, new(mockProjectRepo), 24*time.Hour)

	session, err := service.Validate(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, session)
	sessionRepo.AssertNotCalled(t, "FindByID")
}

func TestValidate_ExpiredSession(t *testing.T) {
	sessionID := uuid.NewString()

	sessionRepo := new(mockSessionRepo)
	sessionRepo.On("FindByID", mock.Anything, sessionID).Return(&model.PortalSession{
		ID:        sessionID,
		ProjectID: "proj-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	service := NewPortalSessionService(sessionRepo, new(mockProjectRepo), 24*time.Hour)

	session, err := service.Validate(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestValidate_PortalDisabledKillsSession(t *testing.T) {
	sessionID := uuid.NewString()

	sessionRepo := new(mockSessionRepo)
	sessionRepo.On("FindByID", mock.Anything, sessionID).Return(&model.PortalSession{
		ID:        sessionID,
		ProjectID: "proj-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	projectRepo := new(mockProjectRepo)
	projectRepo.On("FindByID", mock.Anything, "proj-1").Return(&model.Project{
		ID:            "proj-1",
		PortalEnabled: false,
	}, nil)

	service := NewPortalSessionService(sessionRepo, projectRepo, 24*time.Hour)

	session, err := service.Validate(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestRevoke_MalformedIDIsNoop(t *testing.T) {
	sessionRepo := new(mockSessionRepo)
	service := NewPortalSessionService(sessionRepo, new(mockProjectRepo), 24*time.Hour)

	require.NoError(t, service.Revoke(context.Background(), "garbage"))
	sessionRepo.AssertNotCalled(t, "Delete")
}

func TestRevokeForProject(t *testing.T) {
	sessionRepo := new(mockSessionRepo)
	sessionRepo.On("DeleteByProjectID", mock.Anything, "proj-1").Return(nil)

	service := NewPortalSessionService(sessionRepo, new(mockProjectRepo), 24*time.Hour)

	require.NoError(t, service.RevokeForProject(context.Background(), "proj-1"))
	sessionRepo.AssertCalled(t, "DeleteByProjectID", mock.Anything, "proj-1")
}
