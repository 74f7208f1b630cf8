package handler

import (
	"encoding/json"
	"net/http"

	"secureview/internal/logger"
	"secureview/internal/model"
	"secureview/internal/service"
	"secureview/internal/transport/rest/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc    *service.AuthService
	sessionSvc *service.SessionService
	log        *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, sessionSvc *service.SessionService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, sessionSvc: sessionSvc, log: log}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())

	if err := h.authSvc.Logout(r.Context(), middleware.GetToken(r.Context())); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if err := h.sessionSvc.EndUser(r.Context(), p.UserID); err != nil {
		h.log.Warn("failed to flush sessions on logout", "user_id", p.UserID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.Me(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
