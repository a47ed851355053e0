package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/servicetracker/internal/security/ratelimit"
	"github.com/yourorg/servicetracker/internal/service"
)

// SignupRequest represents the local-mode signup payload
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents the local-mode login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler handles local-mode signup and login. Not mounted when the
// identity provider is remote.
type AuthHandler struct {
	auth    *service.AuthService
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, limiter *ratelimit.Limiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, logger: logger}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.auth.Signup(req.Email, req.Name, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login. Attempts are throttled per email to
// slow down credential stuffing.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if h.limiter != nil {
		key := "login:" + strings.ToLower(req.Email)
		if !h.limiter.AllowStrict(key, 10, time.Minute) {
			h.logger.Warn("login rate limited", slog.String("email", req.Email))
			respondJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "too many login attempts"})
			return
		}
	}

	result, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
