package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/clientlane/crm-server-go/internal/audit"
	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/httputil"
	"github.com/clientlane/crm-server-go/internal/middleware"
	"github.com/clientlane/crm-server-go/internal/service"
	"github.com/clientlane/crm-server-go/internal/util"
)

// AttemptLimiter throttles portal password attempts. Satisfied by
// service.AttemptLimiter in production.
type AttemptLimiter interface {
	Allow(ctx context.Context, ip, slug string) (allowed bool, resetAt time.Time)
}

// PortalHandler serves the visitor-facing portal surface: the password
// entry flow, the authenticated workspace and portal logout.
type PortalHandler struct {
	credentialService *service.CredentialService
	sessionService    *service.PortalSessionService
	collabService     *service.CollaborationService
	attemptLimiter    AttemptLimiter
	fastPath          *middleware.FastPathGate
	markerSecret      string
	isProduction      bool
}

func NewPortalHandler(
	credentialService *service.CredentialService,
	sessionService *service.PortalSessionService,
	collabService *service.CollaborationService,
	attemptLimiter AttemptLimiter,
	fastPath *middleware.FastPathGate,
	markerSecret string,
	isProduction bool,
) *PortalHandler {
	return &PortalHandler{
		credentialService: credentialService,
		sessionService:    sessionService,
		collabService:     collabService,
		attemptLimiter:    attemptLimiter,
		fastPath:          fastPath,
		markerSecret:      markerSecret,
		isProduction:      isProduction,
	}
}

// Routes wires the portal surface. The workspace runs the fast-path gate
// ahead of identity resolution: the gate may mint a session and rewrite
// the request cookie, and the resolver has to see the result.
func (h *PortalHandler) Routes(identity *middleware.IdentityMiddleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(identity.Handler)
		r.Post("/logout", h.Logout)
		r.Get("/{slug}", h.Entry)
		r.Post("/{slug}", h.Authenticate)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.fastPath.Handler)
		r.Use(identity.Handler)
		r.Get("/{slug}/workspace", h.Workspace)
	})

	return r
}

// Entry is the password form endpoint. An unknown or disabled portal sends
// platform users to their dashboard and everyone else to the public root,
// leaking nothing about whether the slug ever existed.
func (h *PortalHandler) Entry(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	cred, err := h.credentialService.FindBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}

	if cred == nil || !cred.Enabled {
		rc := middleware.GetIdentity(r.Context())
		if rc.IsUser() {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slug":             slug,
		"requiresPassword": true,
		"redirect":         safeRedirect(r.URL.Query().Get("redirect"), "/portal/"+slug+"/workspace"),
	})
}

type portalAuthRequest struct {
	VisitorName string `json:"visitorName"`
	Password    string `json:"password"`
	Redirect    string `json:"redirect"`
}

// Authenticate verifies the portal password and issues a session. Every
// failure mode except a malformed visitor name collapses into the same
// generic denial: visitors cannot tell a wrong password from a disabled
// portal or an unknown slug.
func (h *PortalHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ip := clientIP(r)
	if allowed, _ := h.attemptLimiter.Allow(r.Context(), ip, slug); !allowed {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventRateLimitExceed, Slug: util.MaskSlug(slug)})
		writeError(w, apperrors.RateLimitExceeded())
		return
	}

	var req portalAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if !util.IsValidVisitorName(req.VisitorName) {
		writeError(w, apperrors.InvalidInput("visitorName", "must be at least 3 characters"))
		return
	}

	cred, err := h.credentialService.FindBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}
	if cred == nil || !cred.Enabled {
		h.deny(w, r, slug)
		return
	}

	ok, err := h.credentialService.Verify(r.Context(), cred.ProjectID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		h.deny(w, r, slug)
		return
	}

	ua := r.UserAgent()
	session, err := h.sessionService.Issue(r.Context(), cred.ProjectID, req.VisitorName, &ip, &ua)
	if err != nil {
		if appErr, isApp := apperrors.AsAppError(err); isApp && appErr.Code == apperrors.ErrCodeInvalidInput {
			writeError(w, err)
			return
		}
		h.deny(w, r, slug)
		return
	}

	middleware.SetPortalSessionCookie(w, session.ID, h.sessionService.TTL(), h.isProduction)
	if h.markerSecret != "" {
		marker := middleware.MakePortalMarker(h.markerSecret, slug, session.VisitorName)
		middleware.SetPortalMarkerCookie(w, slug, marker, h.isProduction)
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventPortalGrant,
		ProjectID: session.ProjectID,
		Slug:      util.MaskSlug(slug),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"redirect": safeRedirect(req.Redirect, "/portal/"+slug+"/workspace"),
	})
}

// Workspace is the shared project view behind the fast-path gate. Reads
// still go through full resolution and the access gate.
func (h *PortalHandler) Workspace(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	cred, err := h.credentialService.FindBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}
	if cred == nil || !cred.Enabled {
		httputil.WriteDenial(w)
		return
	}

	rc := middleware.GetIdentity(r.Context())
	pagination := ParsePagination(r)

	page, err := h.collabService.ListMessages(r.Context(), rc, cred.ProjectID, pagination.Limit, pagination.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{
		"projectId": cred.ProjectID,
		"messages":  page.Messages,
		"total":     page.Total,
		"hasMore":   page.HasMore,
	}
	if rc.IsPortal() {
		resp["visitorName"] = rc.Visitor.VisitorName
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PortalHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := middleware.CookieValue(r, middleware.PortalSessionCookie); sessionID != "" {
		if err := h.sessionService.Revoke(r.Context(), sessionID); err != nil {
			log.Error().Err(err).Msg("failed to revoke portal session on logout")
		}
	}

	middleware.ClearCookie(w, middleware.PortalSessionCookie, "/")
	audit.LogFromRequest(r, audit.Event{Type: audit.EventPortalLogout})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PortalHandler) deny(w http.ResponseWriter, r *http.Request, slug string) {
	audit.LogFromRequest(r, audit.Event{Type: audit.EventPortalDeny, Slug: util.MaskSlug(slug)})
	httputil.WriteDenial(w)
}

// safeRedirect accepts only same-site paths, falling back otherwise.
func safeRedirect(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return fallback
	}
	return raw
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx != -1 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}
	return r.RemoteAddr
}
