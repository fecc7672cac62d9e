package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const markerSecret = "marker-secret-for-tests"

func TestPortalMarker_Roundtrip(t *testing.T) {
	marker := MakePortalMarker(markerSecret, "ab3x9k2m", "Jamie")

	name, ok := ParsePortalMarker(markerSecret, "ab3x9k2m", marker)
	require.True(t, ok)
	assert.Equal(t, "Jamie", name)
}

func TestPortalMarker_BoundToSlug(t *testing.T) {
	marker := MakePortalMarker(markerSecret, "ab3x9k2m", "Jamie")

	_, ok := ParsePortalMarker(markerSecret, "other-slug", marker)
	assert.False(t, ok)
}

func TestPortalMarker_WrongSecret(t *testing.T) {
	marker := MakePortalMarker(markerSecret, "ab3x9k2m", "Jamie")

	_, ok := ParsePortalMarker("forged-secret", "ab3x9k2m", marker)
	assert.False(t, ok)
}

func TestPortalMarker_TamperedName(t *testing.T) {
	jamie := MakePortalMarker(markerSecret, "ab3x9k2m", "Jamie")
	alex := MakePortalMarker(markerSecret, "ab3x9k2m", "Alex")

	// Splice Alex's encoded name onto Jamie's signature.
	spliced := alex[:strings.IndexByte(alex, '.')] + jamie[strings.IndexByte(jamie, '.'):]
	_, ok := ParsePortalMarker(markerSecret, "ab3x9k2m", spliced)
	assert.False(t, ok)

	_, ok = ParsePortalMarker(markerSecret, "ab3x9k2m", "garbage")
	assert.False(t, ok)
}

func TestPortalMarker_EmptySecretNeverMatches(t *testing.T) {
	marker := MakePortalMarker("", "ab3x9k2m", "Jamie")

	_, ok := ParsePortalMarker("", "ab3x9k2m", marker)
	assert.False(t, ok)
}

func TestPortalMarker_NamesWithDots(t *testing.T) {
	// base64url never emits '.', so the last dot always splits correctly.
	marker := MakePortalMarker(markerSecret, "ab3x9k2m", "J. R. Client")

	name, ok := ParsePortalMarker(markerSecret, "ab3x9k2m", marker)
	require.True(t, ok)
	assert.Equal(t, "J. R. Client", name)
}

// Without any cookie the gate must not consult storage: it redirects to the
// entry form carrying the original path.
func TestFastPathGate_NoCookiesRedirectsToEntry(t *testing.T) {
	gate := NewFastPathGate(nil, nil, markerSecret, false)

	r := chi.NewRouter()
	r.With(gate.Handler).Get("/portal/{slug}/workspace", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session or marker")
	})

	req := httptest.NewRequest(http.MethodGet, "/portal/ab3x9k2m/workspace?tab=files", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/portal/ab3x9k2m?redirect=%2Fportal%2Fab3x9k2m%2Fworkspace%3Ftab%3Dfiles", rec.Header().Get("Location"))
}

func TestFastPathGate_InvalidMarkerRedirects(t *testing.T) {
	gate := NewFastPathGate(nil, nil, markerSecret, false)

	r := chi.NewRouter()
	r.With(gate.Handler).Get("/portal/{slug}/workspace", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on a forged marker")
	})

	req := httptest.NewRequest(http.MethodGet, "/portal/ab3x9k2m/workspace", nil)
	req.AddCookie(&http.Cookie{
		Name:  PortalMarkerCookie,
		Value: MakePortalMarker("forged-secret", "ab3x9k2m", "Jamie"),
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
}
