package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest admin password accepted
const MinPasswordLength = 8

const tokenIssuer = "clinic-site"

// PasswordResetSender delivers a password reset link
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, user *entities.AdminUser, token string, ttl time.Duration) error
}

// AuthConfig configures token lifetimes and signing
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

type adminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService authenticates CMS administrators
type AuthService struct {
	users    repositories.AdminUserRepository
	mailer   PasswordResetSender
	secret   []byte
	tokenTTL time.Duration
	resetTTL time.Duration
	cost     int
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.AdminUserRepository, mailer PasswordResetSender, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		users:    users,
		mailer:   mailer,
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL,
		resetTTL: cfg.ResetTokenTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Login checks the credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*entities.AuthToken, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	now := s.now()
	token, expiresAt, err := s.issueToken(user, now)
	if err != nil {
		return nil, err
	}

	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record admin login")
	}

	return &entities.AuthToken{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) issueToken(user *entities.AdminUser, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.tokenTTL)
	claims := adminClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError("failed to sign token", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses a session token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*entities.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &adminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(*adminClaims)
	if !ok || claims.Subject == "" {
		return nil, apperrors.NewUnauthorizedError("invalid token claims")
	}
	return &entities.AdminClaims{UserID: claims.Subject, Email: claims.Email}, nil
}

// CurrentUser loads the account behind validated claims
func (s *AuthService) CurrentUser(ctx context.Context, claims *entities.AdminClaims) (*entities.AdminUser, error) {
	user, err := s.users.GetByID(ctx, claims.UserID)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewUnauthorizedError("account no longer exists")
	}
	return user, err
}

// ForgotPassword stores a reset token and emails it when the account exists.
// Unknown addresses are not reported to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.NewValidationError("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to look up admin for password reset")
		}
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return apperrors.NewInternalError("failed to generate reset token", err)
	}
	expiresAt := s.now().Add(s.resetTTL)
	user.ResetTokenHash = hashResetToken(token)
	user.ResetExpiresAt = &expiresAt
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("Failed to store reset token")
		return nil
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, user, token, s.resetTTL); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("Failed to send password reset email")
		}
	}
	return nil
}

// ResetPassword sets a new password for the holder of a valid reset token
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewValidationError("reset token is required")
	}
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.users.GetByResetTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("reset link is invalid or has expired")
		}
		return err
	}
	if !user.ResetTokenValid(s.now()) {
		return apperrors.NewValidationError("reset link is invalid or has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}
	user.PasswordHash = string(hash)
	user.ResetTokenHash = ""
	user.ResetExpiresAt = nil
	user.UpdatedAt = s.now()
	return s.users.Update(ctx, user)
}

// EnsureBootstrapAdmin creates the first admin when no account exists yet
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("bootstrap password must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}
	now := s.now()
	user := &entities.AdminUser{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("email", email).Msg("Created bootstrap admin account")
	return nil
}

// HashPassword hashes a password with the service's bcrypt cost
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
