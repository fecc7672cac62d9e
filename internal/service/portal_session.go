package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/repository"
	"github.com/clientlane/crm-server-go/internal/util"
)

// PortalSessionService issues and validates the opaque, time-boxed sessions
// behind portal visitor cookies.
type PortalSessionService struct {
	sessionRepo repository.PortalSessionRepository
	projectRepo repository.ProjectRepository
	ttl         time.Duration
}

func NewPortalSessionService(
	sessionRepo repository.PortalSessionRepository,
	projectRepo repository.ProjectRepository,
	ttl time.Duration,
) *PortalSessionService {
	return &PortalSessionService{
		sessionRepo: sessionRepo,
		projectRepo: projectRepo,
		ttl:         ttl,
	}
}

func (s *PortalSessionService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a session binding a visitor-supplied display name to a
// project. Repeat visits with the same name create independent sessions;
// this layer guarantees no identity continuity across visits.
func (s *PortalSessionService) Issue(ctx context.Context, projectID, visitorName string, ip, userAgent *string) (*model.PortalSession, error) {
	visitorName = strings.TrimSpace(visitorName)
	if !util.IsValidVisitorName(visitorName) {
		return nil, apperrors.InvalidInput("visitorName", "must be at least 3 characters")
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if project == nil {
		return nil, apperrors.NotFound("Project")
	}
	if !project.PortalEnabled {
		return nil, apperrors.PortalDisabled()
	}

	now := time.Now()
	session, err := s.sessionRepo.Create(ctx, model.CreatePortalSessionParams{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		VisitorName: visitorName,
		IPAddress:   ip,
		UserAgent:   userAgent,
		ExpiresAt:   now.Add(s.ttl),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("projectId", projectID).
		Str("visitorName", visitorName).
		Time("expiresAt", session.ExpiresAt).
		Msg("portal session issued")

	return session, nil
}

// Validate returns the session for an opaque id if it exists, has not
// expired, and the owning project's portal is still enabled. Any other
// outcome is nil, nil: callers fall through to unauthenticated handling.
func (s *PortalSessionService) Validate(ctx context.Context, id string) (*model.PortalSession, error) {
	if !util.IsValidUUID(id) {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil || session.IsExpired() {
		return nil, nil
	}

	project, err := s.projectRepo.FindByID(ctx, session.ProjectID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if project == nil || !project.PortalEnabled {
		return nil, nil
	}

	return session, nil
}

// Revoke deletes a single session (portal logout).
func (s *PortalSessionService) Revoke(ctx context.Context, id string) error {
	if !util.IsValidUUID(id) {
		return nil
	}
	return s.sessionRepo.Delete(ctx, id)
}

// RevokeForProject clears every session of a project. Called on portal
// disable so a later re-enable starts with no live visitors.
func (s *PortalSessionService) RevokeForProject(ctx context.Context, projectID string) error {
	if err := s.sessionRepo.DeleteByProjectID(ctx, projectID); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
