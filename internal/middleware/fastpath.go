package middleware

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/clientlane/crm-server-go/internal/service"
	"github.com/clientlane/crm-server-go/internal/util"
)

// FastPathGate short-circuits repeat portal visits. A previously granted
// marker cookie lets a returning visitor skip the password prompt: the gate
// mints a fresh session and falls through to the wrapped page. It is never
// the authority for a mutation; every write re-resolves identity through
// the full resolver.
type FastPathGate struct {
	credentialSvc *service.CredentialService
	sessionSvc    *service.PortalSessionService
	markerSecret  string
	isProduction  bool
}

func NewFastPathGate(
	credentialSvc *service.CredentialService,
	sessionSvc *service.PortalSessionService,
	markerSecret string,
	isProduction bool,
) *FastPathGate {
	return &FastPathGate{
		credentialSvc: credentialSvc,
		sessionSvc:    sessionSvc,
		markerSecret:  markerSecret,
		isProduction:  isProduction,
	}
}

func (g *FastPathGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		// An existing valid session for this portal wins outright.
		if sessionID := CookieValue(r, PortalSessionCookie); sessionID != "" {
			session, err := g.sessionSvc.Validate(r.Context(), sessionID)
			if err == nil && session != nil {
				if cred, err := g.credentialSvc.FindBySlug(r.Context(), slug); err == nil && cred != nil && cred.ProjectID == session.ProjectID {
					next.ServeHTTP(w, r)
					return
				}
			}
		}

		visitorName, ok := ParsePortalMarker(g.markerSecret, slug, CookieValue(r, PortalMarkerCookie))
		if !ok {
			g.redirectToEntry(w, r, slug)
			return
		}

		cred, err := g.credentialSvc.FindBySlug(r.Context(), slug)
		if err != nil || cred == nil || !cred.Enabled {
			g.redirectToEntry(w, r, slug)
			return
		}

		ip := r.RemoteAddr
		ua := r.UserAgent()
		session, err := g.sessionSvc.Issue(r.Context(), cred.ProjectID, visitorName, &ip, &ua)
		if err != nil {
			log.Debug().Err(err).Str("slug", util.MaskSlug(slug)).Msg("fast-path session issue failed")
			g.redirectToEntry(w, r, slug)
			return
		}

		SetPortalSessionCookie(w, session.ID, g.sessionSvc.TTL(), g.isProduction)

		// Full resolution runs behind this gate and reads request cookies,
		// so the fresh session must replace any stale one on the request.
		cookies := r.Cookies()
		r.Header.Del("Cookie")
		for _, c := range cookies {
			if c.Name != PortalSessionCookie {
				r.AddCookie(c)
			}
		}
		r.AddCookie(&http.Cookie{Name: PortalSessionCookie, Value: session.ID})
		next.ServeHTTP(w, r)
	})
}

// redirectToEntry sends the visitor to the password form, preserving the
// originally requested path as the post-auth return target.
func (g *FastPathGate) redirectToEntry(w http.ResponseWriter, r *http.Request, slug string) {
	target := "/portal/" + slug + "?redirect=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}

// MakePortalMarker binds a visitor name to a slug under the marker secret.
// The marker proves a past successful password entry for this portal; it
// grants a session, never project access by itself.
func MakePortalMarker(secret, slug, visitorName string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(visitorName))
	return encoded + "." + util.HmacSHA256(secret, slug+"."+encoded)
}

func ParsePortalMarker(secret, slug, marker string) (string, bool) {
	if secret == "" || marker == "" {
		return "", false
	}

	idx := strings.LastIndexByte(marker, '.')
	if idx <= 0 {
		return "", false
	}

	encoded, sig := marker[:idx], marker[idx+1:]
	if !util.ConstantTimeEqual(sig, util.HmacSHA256(secret, slug+"."+encoded)) {
		return "", false
	}

	name, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(name), true
}
