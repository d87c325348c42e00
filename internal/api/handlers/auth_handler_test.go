package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/api/handlers"
	"github.com/zatekoja/clinic-site/internal/api/middleware"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*entities.AuthToken, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AuthToken), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, claims *entities.AdminClaims) (*entities.AdminUser, error) {
	args := m.Called(ctx, claims)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AdminUser), args.Error(1)
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns a token", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, nil)

		expires := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
		svc.On("Login", mock.Anything, "admin@clinic.test", "s3cret-pass").Return(&entities.AuthToken{
			Token:     "jwt-token",
			ExpiresAt: expires,
			User:      &entities.AdminUser{ID: "u1", Email: "admin@clinic.test", PasswordHash: "hash"},
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
			strings.NewReader(`{"email":"admin@clinic.test","password":"s3cret-pass"}`))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"token":"jwt-token"`)
		assert.NotContains(t, w.Body.String(), "hash")
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, nil)
		svc.On("Login", mock.Anything, "admin@clinic.test", "wrong").
			Return(nil, apperrors.NewUnauthorizedError("invalid email or password"))

		req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
			strings.NewReader(`{"email":"admin@clinic.test","password":"wrong"}`))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid email or password", errorMessage(t, w))
	})

	t.Run("rate limited per client", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, nil)
		svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.NewUnauthorizedError("invalid email or password"))

		attempt := func(ip string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
				strings.NewReader(`{"email":"admin@clinic.test","password":"guess"}`))
			req.Header.Set("X-Forwarded-For", ip)
			w := httptest.NewRecorder()
			handler.Login(w, req)
			return w
		}

		for i := 0; i < 10; i++ {
			require.Equal(t, http.StatusUnauthorized, attempt("203.0.113.9").Code)
		}
		blocked := attempt("203.0.113.9")
		assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
		assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

		assert.Equal(t, http.StatusUnauthorized, attempt("198.51.100.4").Code)
		svc.AssertNumberOfCalls(t, "Login", 11)
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	svc := new(MockAuthService)
	handler := handlers.NewAuthHandler(svc, nil)
	svc.On("ForgotPassword", mock.Anything, "nobody@clinic.test").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/forgot-password", strings.NewReader(`{"email":"nobody@clinic.test"}`))
	w := httptest.NewRecorder()
	handler.ForgotPassword(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "if the account exists, a reset link has been sent", payload["status"])
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	svc := new(MockAuthService)
	handler := handlers.NewAuthHandler(svc, nil)
	svc.On("ResetPassword", mock.Anything, "good-token", "new-password-1").Return(nil)
	svc.On("ResetPassword", mock.Anything, "stale-token", mock.Anything).
		Return(apperrors.NewValidationError("reset token is invalid or has expired"))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/reset-password",
		strings.NewReader(`{"token":"good-token","password":"new-password-1"}`))
	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/reset-password",
		strings.NewReader(`{"token":"stale-token","password":"new-password-1"}`))
	w = httptest.NewRecorder()
	handler.ResetPassword(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "reset token is invalid or has expired", errorMessage(t, w))
}

func TestAuthHandler_Me(t *testing.T) {
	svc := new(MockAuthService)
	handler := handlers.NewAuthHandler(svc, nil)

	claims := &entities.AdminClaims{UserID: "u1", Email: "admin@clinic.test"}
	svc.On("CurrentUser", mock.Anything, claims).Return(&entities.AdminUser{ID: "u1", Email: "admin@clinic.test", Name: "Front Desk"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req = req.WithContext(middleware.WithAdmin(req.Context(), claims))
	w := httptest.NewRecorder()
	handler.Me(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Front Desk"`)

	w = httptest.NewRecorder()
	handler.Me(w, httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
