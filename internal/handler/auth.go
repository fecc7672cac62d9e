package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/clientlane/crm-server-go/internal/audit"
	"github.com/clientlane/crm-server-go/internal/config"
	"github.com/clientlane/crm-server-go/internal/middleware"
	"github.com/clientlane/crm-server-go/internal/model"
	"github.com/clientlane/crm-server-go/internal/service"
	"github.com/clientlane/crm-server-go/internal/util"
)

// AuthHandler issues and clears the platform identity cookies: the signed
// bearer token and the redacted profile the frontend reads.
type AuthHandler struct {
	userService  *service.UserService
	loginLimiter *middleware.LoginRateLimiter
	authSecret   string
	isProduction bool
}

func NewAuthHandler(
	userService *service.UserService,
	loginLimiter *middleware.LoginRateLimiter,
	authSecret string,
	isProduction bool,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		loginLimiter: loginLimiter,
		authSecret:   authSecret,
		isProduction: isProduction,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.With(h.loginLimiter.Handler).Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	return r
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventSignup, UserID: user.ID})

	if err := h.setAuthCookies(w, user); err != nil {
		log.Error().Err(err).Msg("failed to issue token after signup")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user.Redacted()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: user.ID})

	if err := h.setAuthCookies(w, user); err != nil {
		log.Error().Err(err).Msg("failed to issue token after login")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user.Redacted()})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	rc := middleware.GetIdentity(r.Context())
	if rc.IsUser() {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout, UserID: rc.User.ID})
	}

	middleware.ClearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, user *model.User) error {
	token, err := util.IssueUserToken(h.authSecret, user.ID, config.PlatformTokenTTL)
	if err != nil {
		return err
	}

	profile, err := json.Marshal(user.Redacted())
	if err != nil {
		return err
	}

	// Cookie values cannot carry raw JSON; the frontend decodes this.
	encoded := base64.RawURLEncoding.EncodeToString(profile)

	middleware.SetAuthCookies(w, token, encoded, h.isProduction)
	return nil
}
