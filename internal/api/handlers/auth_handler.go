package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/zatekoja/clinic-site/internal/api/middleware"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
)

const (
	loginRateLimit  = 10
	loginRateWindow = 15 * time.Minute
)

// AuthService defines the admin authentication operations used by the handler
type AuthService interface {
	Login(ctx context.Context, email, password string) (*entities.AuthToken, error)
	CurrentUser(ctx context.Context, claims *entities.AdminClaims) (*entities.AdminUser, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler handles admin login and password recovery
type AuthHandler struct {
	service AuthService
	guard   *requestGuard
}

// NewAuthHandler creates a new auth handler. cache may be nil.
func NewAuthHandler(service AuthService, cache providers.CacheProvider) *AuthHandler {
	return &AuthHandler{
		service: service,
		guard:   newRequestGuard(cache, loginRateLimit, loginRateWindow, 0),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	allowed, retryAfter := h.guard.allow(r.Context(), "auth:rate:"+clientIP(r))
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, token)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/admin/forgot-password. The response does
// not reveal whether the account exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload forgotPasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), payload.Email); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status": "if the account exists, a reset link has been sent",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword handles POST /api/admin/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload resetPasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), payload.Token, payload.Password); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "password updated",
	})
}

// Me handles GET /api/admin/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.service.CurrentUser(r.Context(), claims)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}
