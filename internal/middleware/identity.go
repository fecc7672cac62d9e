package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/clientlane/crm-server-go/internal/httputil"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/service"
)

type contextKey string

const identityContextKey contextKey = "identity"

// GetIdentity returns the resolved identity for the request, or the none
// context when resolution never ran.
func GetIdentity(ctx context.Context) model.ResolvedContext {
	if rc, ok := ctx.Value(identityContextKey).(model.ResolvedContext); ok {
		return rc
	}
	return model.ResolvedNone()
}

// WithIdentity is exported for handler tests.
func WithIdentity(ctx context.Context, rc model.ResolvedContext) context.Context {
	return context.WithValue(ctx, identityContextKey, rc)
}

// IdentityMiddleware runs full identity resolution on every request it
// wraps and stores the result in the request context. It never rejects:
// an unresolved request proceeds as {none} and is refused, if at all, by
// the authorization gate behind it.
type IdentityMiddleware struct {
	identitySvc *service.IdentityService
}

func NewIdentityMiddleware(identitySvc *service.IdentityService) *IdentityMiddleware {
	return &IdentityMiddleware{identitySvc: identitySvc}
}

func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, err := m.identitySvc.Resolve(
			r.Context(),
			CookieValue(r, AuthTokenCookie),
			CookieValue(r, PortalSessionCookie),
		)
		if err != nil {
			log.Error().Err(err).Msg("identity middleware: resolution error")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Identity resolution failed",
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), rc)))
	})
}

// RequireUser guards owner-facing routes: only a resolved platform user
// passes. Ownership of the addressed resource is checked by the handler.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := GetIdentity(r.Context())
		if !rc.IsUser() {
			httputil.WriteDenial(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
