package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clientlane/crm-server-go/internal/middleware"
	"github.com/clientlane/crm-server-go/internal/service"
)

// CollabHandler serves the shared collaboration surface. Both platform
// users and portal visitors reach these routes; the service layer decides
// who may do what.
type CollabHandler struct {
	collabService *service.CollaborationService
}

func NewCollabHandler(collabService *service.CollaborationService) *CollabHandler {
	return &CollabHandler{collabService: collabService}
}

func (h *CollabHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Get("/messages", h.ListMessages)
		r.Post("/messages", h.CreateMessage)
		r.Get("/comments", h.ListComments)
		r.Post("/comments", h.CreateComment)
		r.Get("/attachments", h.ListAttachments)
		r.Post("/attachments", h.CreateAttachment)
	})

	r.Put("/messages/{messageID}", h.UpdateMessage)
	r.Delete("/messages/{messageID}", h.DeleteMessage)
	r.Put("/comments/{commentID}", h.UpdateComment)
	r.Delete("/comments/{commentID}", h.DeleteComment)
	r.Delete("/attachments/{attachmentID}", h.DeleteAttachment)

	r.Route("/attachments/{attachmentID}/markups", func(r chi.Router) {
		r.Get("/", h.ListMarkups)
		r.Post("/", h.CreateMarkup)
	})
	r.Put("/markups/{markupID}", h.UpdateMarkup)
	r.Delete("/markups/{markupID}", h.DeleteMarkup)

	return r
}

func (h *CollabHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())
	pagination := ParsePagination(r)

	page, err := h.collabService.ListMessages(r.Context(), rc, chi.URLParam(r, "projectID"), pagination.Limit, pagination.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": page.Messages,
		"total":    page.Total,
		"hasMore":  page.HasMore,
	})
}

type messageRequest struct {
	Body string `json:"body"`
}

func (h *CollabHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	message, err := h.collabService.CreateMessage(r.Context(), rc, chi.URLParam(r, "projectID"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *CollabHandler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	message, err := h.collabService.UpdateMessage(r.Context(), rc, chi.URLParam(r, "messageID"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, message)
}

func (h *CollabHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	if err := h.collabService.DeleteMessage(r.Context(), rc, chi.URLParam(r, "messageID")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CollabHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	comments, err := h.collabService.ListComments(r.Context(), rc, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

type createCommentRequest struct {
	Body      string  `json:"body"`
	MarkupID  *string `json:"markupId,omitempty"`
	MessageID *string `json:"messageId,omitempty"`
}

func (h *CollabHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	comment, err := h.collabService.CreateComment(r.Context(), rc, chi.URLParam(r, "projectID"), req.MarkupID, req.MessageID, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *CollabHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	comment, err := h.collabService.UpdateComment(r.Context(), rc, chi.URLParam(r, "commentID"), req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

func (h *CollabHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	if err := h.collabService.DeleteComment(r.Context(), rc, chi.URLParam(r, "commentID")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CollabHandler) ListMarkups(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	markups, err := h.collabService.ListMarkups(r.Context(), rc, chi.URLParam(r, "attachmentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"markups": markups})
}

type markupRequest struct {
	Path json.RawMessage `json:"path"`
}

func (h *CollabHandler) CreateMarkup(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req markupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	markup, err := h.collabService.CreateMarkup(r.Context(), rc, chi.URLParam(r, "attachmentID"), req.Path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, markup)
}

func (h *CollabHandler) UpdateMarkup(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req markupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	markup, err := h.collabService.UpdateMarkup(r.Context(), rc, chi.URLParam(r, "markupID"), req.Path)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, markup)
}

func (h *CollabHandler) DeleteMarkup(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	if err := h.collabService.DeleteMarkup(r.Context(), rc, chi.URLParam(r, "markupID")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CollabHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	attachments, err := h.collabService.ListAttachments(r.Context(), rc, chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"attachments": attachments})
}

type createAttachmentRequest struct {
	Filename  string  `json:"filename"`
	MimeType  string  `json:"mimeType"`
	SizeBytes int64   `json:"sizeBytes"`
	MessageID *string `json:"messageId,omitempty"`
}

func (h *CollabHandler) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	var req createAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	attachment, err := h.collabService.CreateAttachment(r.Context(), rc, chi.URLParam(r, "projectID"), req.MessageID, req.Filename, req.MimeType, req.SizeBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, attachment)
}

func (h *CollabHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())

	if err := h.collabService.DeleteAttachment(r.Context(), rc, chi.URLParam(r, "attachmentID")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
