package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clientlane/crm-server-go/internal/audit"
	apperrors "github.com/clientlane/crm-server-go/internal/errors"
	"github.com/clientlane/crm-server-go/internal/middleware"
	"github.com/clientlane/crm-server-go/internal/service"
	"github.com/clientlane/crm-server-go/internal/util"
)

// ProjectHandler exposes the owner-side API: projects, clients and
// portal credential management. Every route requires a platform user.
type ProjectHandler struct {
	projectService    *service.ProjectService
	credentialService *service.CredentialService
	sessionService    *service.PortalSessionService
}

func NewProjectHandler(
	projectService *service.ProjectService,
	credentialService *service.CredentialService,
	sessionService *service.PortalSessionService,
) *ProjectHandler {
	return &ProjectHandler{
		projectService:    projectService,
		credentialService: credentialService,
		sessionService:    sessionService,
	}
}

func (h *ProjectHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireUser)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/clients", h.ListClients)
	r.Post("/clients", h.CreateClient)

	r.Route("/{projectID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/portal/enable", h.EnablePortal)
		r.Post("/portal/disable", h.DisablePortal)
		r.Post("/portal/rotate", h.RotatePassword)
		r.Get("/portal/credential", h.RevealCredential)
	})

	return r
}

type createProjectRequest struct {
	Name     string  `json:"name"`
	ClientID *string `json:"clientId,omitempty"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	project, err := h.projectService.Create(r.Context(), rc.User.ID, req.Name, req.ClientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	projects, err := h.projectService.List(r.Context(), rc.User.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	project, err := h.projectService.GetOwned(r.Context(), rc.User.ID, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

type createClientRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

func (h *ProjectHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	client, err := h.projectService.CreateClient(r.Context(), rc.User.ID, req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

func (h *ProjectHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	clients, err := h.projectService.ListClients(r.Context(), rc.User.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// EnablePortal turns the portal on for a project. The first call mints a
// slug and password and returns the plaintext once; later calls re-enable
// the existing credential without exposing the password again.
func (h *ProjectHandler) EnablePortal(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	project, err := h.projectService.GetOwned(r.Context(), rc.User.ID, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}

	cred, plaintext, err := h.credentialService.EnablePortal(r.Context(), project.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventPortalEnable,
		UserID:    rc.User.ID,
		ProjectID: project.ID,
		Slug:      util.MaskSlug(cred.Slug),
	})

	resp := map[string]any{
		"slug":      cred.Slug,
		"enabled":   true,
		"portalUrl": "/portal/" + cred.Slug,
	}
	if plaintext != "" {
		resp["password"] = plaintext
	}
	writeJSON(w, http.StatusOK, resp)
}

// DisablePortal flips the portal off. Outstanding sessions for the
// project are deleted so a later re-enable starts clean, though the
// enabled check alone already makes them unusable.
func (h *ProjectHandler) DisablePortal(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	project, err := h.projectService.GetOwned(r.Context(), rc.User.ID, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.credentialService.DisablePortal(r.Context(), project.ID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessionService.RevokeForProject(r.Context(), project.ID); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventPortalDisable,
		UserID:    rc.User.ID,
		ProjectID: project.ID,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RotatePassword replaces the portal password while keeping the slug, so
// links that were already shared keep working.
func (h *ProjectHandler) RotatePassword(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	project, err := h.projectService.GetOwned(r.Context(), rc.User.ID, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}

	plaintext, err := h.credentialService.RotatePassword(r.Context(), project.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventCredentialRotate,
		UserID:    rc.User.ID,
		ProjectID: project.ID,
	})

	writeJSON(w, http.StatusOK, map[string]string{"password": plaintext})
}

// RevealCredential returns the stored slug and, when decryptable, the
// current plaintext password for display in the owner dashboard.
func (h *ProjectHandler) RevealCredential(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	project, err := h.projectService.GetOwned(r.Context(), rc.User.ID, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}

	cred, err := h.credentialService.FindByProjectID(r.Context(), project.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if cred == nil {
		writeError(w, apperrors.NotFound("Portal credential"))
		return
	}

	plaintext, err := h.credentialService.Reveal(r.Context(), project.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventCredentialReveal,
		UserID:    rc.User.ID,
		ProjectID: project.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"slug":     cred.Slug,
		"password": plaintext,
		"enabled":  cred.Enabled,
	})
}
