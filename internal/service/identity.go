package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/repository"
	"github.com/clientlane/crm-server-go/internal/util"
)

// IdentityService resolves inbound request credentials to exactly one
// identity. Platform identity takes precedence over portal identity: an
// authenticated owner browsing their own portal link is the owner, not an
// anonymous visitor.
type IdentityService struct {
	userRepo   repository.UserRepository
	sessionSvc *PortalSessionService
	authSecret string
}

func NewIdentityService(
	userRepo repository.UserRepository,
	sessionSvc *PortalSessionService,
	authSecret string,
) *IdentityService {
	return &IdentityService{
		userRepo:   userRepo,
		sessionSvc: sessionSvc,
		authSecret: authSecret,
	}
}

// Resolve inspects the bearer token and portal session id taken from the
// request cookies, in that order. A stale or invalid platform token falls
// through to the portal path rather than rejecting: it must not block
// portal access from the same browser. The resolver knows nothing about
// project ownership; callers check that against the resolved user id.
func (s *IdentityService) Resolve(ctx context.Context, authToken, portalSessionID string) (model.ResolvedContext, error) {
	if authToken != "" {
		userID, err := util.ParseUserToken(s.authSecret, authToken)
		if err == nil {
			user, err := s.userRepo.FindByID(ctx, userID)
			if err != nil {
				return model.ResolvedNone(), apperrors.Database(err)
			}
			if user != nil {
				return model.ResolvedUser(user), nil
			}
		} else {
			log.Debug().Err(err).Msg("platform token rejected, falling through to portal session")
		}
	}

	if portalSessionID != "" {
		session, err := s.sessionSvc.Validate(ctx, portalSessionID)
		if err != nil {
			return model.ResolvedNone(), err
		}
		if session != nil {
			return model.ResolvedVisitor(session), nil
		}
	}

	return model.ResolvedNone(), nil
}
