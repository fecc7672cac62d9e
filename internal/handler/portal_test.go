package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirect(t *testing.T) {
	fallback := "/portal/ab3x9k2m/workspace"

	assert.Equal(t, "/portal/ab3x9k2m/files", safeRedirect("/portal/ab3x9k2m/files", fallback))
	assert.Equal(t, fallback, safeRedirect("", fallback))
	assert.Equal(t, fallback, safeRedirect("https://evil.example.com", fallback))
	assert.Equal(t, fallback, safeRedirect("//evil.example.com", fallback))
	assert.Equal(t, fallback, safeRedirect("javascript:alert(1)", fallback))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/portal/ab3x9k2m", nil)
	req.RemoteAddr = "10.0.0.1:4242"
	assert.Equal(t, "10.0.0.1:4242", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10&offset=20", nil)
	p := ParsePagination(req)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	p = ParsePagination(req)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	req = httptest.NewRequest(http.MethodGet, "/?limit=9999&offset=-5", nil)
	p = ParsePagination(req)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}
