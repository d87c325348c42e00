package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

type ctxKey string

const adminClaimsKey ctxKey = "admin_claims"

// TokenValidator verifies an admin session token
type TokenValidator interface {
	ValidateToken(token string) (*entities.AdminClaims, error)
}

// AdminFromContext returns the authenticated admin attached by RequireAdmin
func AdminFromContext(ctx context.Context) (*entities.AdminClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(*entities.AdminClaims)
	return claims, ok && claims != nil
}

// WithAdmin attaches admin claims to ctx
func WithAdmin(ctx context.Context, claims *entities.AdminClaims) context.Context {
	return context.WithValue(ctx, adminClaimsKey, claims)
}

// RequireAdmin rejects requests without a valid "Authorization: Bearer" token
func RequireAdmin(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "authentication required")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				log.Ctx(r.Context()).Debug().Err(err).Msg("Rejected admin token")
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := WithAdmin(r.Context(), claims)
			ctx = log.Ctx(ctx).With().Str("admin_id", claims.UserID).Logger().WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
