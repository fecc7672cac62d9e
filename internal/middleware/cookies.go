package middleware

import (
	"net/http"
	"time"

	"github.com/clientlane/crm-server-go/internal/config"
)

const (
	// AuthTokenCookie is the signed platform bearer token.
	AuthTokenCookie = "auth_token"
	// ProfileCookie carries the redacted profile for the frontend. It is
	// deliberately not httpOnly and is never trusted server-side.
	ProfileCookie = "profile"
	// PortalSessionCookie holds the opaque portal session id.
	PortalSessionCookie = "portal_session"
	// PortalMarkerCookie is the non-authoritative fast-path access marker.
	PortalMarkerCookie = "portal_access"

	// PortalMarkerMaxAge outlives individual sessions so returning
	// visitors skip the password prompt.
	PortalMarkerMaxAge = 30 * 24 * time.Hour

	// CSRFMaxAge bounds the double-submit cookie lifetime.
	CSRFMaxAge = 24 * time.Hour
)

func SetAuthCookies(w http.ResponseWriter, token, profileJSON string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(config.PlatformTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     ProfileCookie,
		Value:    profileJSON,
		Path:     "/",
		MaxAge:   int(config.PlatformTokenTTL.Seconds()),
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookies(w http.ResponseWriter) {
	ClearCookie(w, AuthTokenCookie, "/")
	ClearCookie(w, ProfileCookie, "/")
}

// SetPortalSessionCookie scopes the session cookie to the whole site:
// visitors hit both /portal pages and /api/collab endpoints. Identity
// resolution checks the platform token first, so the cookie riding along on
// an owner's requests changes nothing.
func SetPortalSessionCookie(w http.ResponseWriter, sessionID string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     PortalSessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func SetPortalMarkerCookie(w http.ResponseWriter, slug, marker string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     PortalMarkerCookie,
		Value:    marker,
		Path:     "/portal/" + slug,
		MaxAge:   int(PortalMarkerMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   path,
		MaxAge: -1,
	})
}

// CookieValue returns the named cookie's value or "".
func CookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
