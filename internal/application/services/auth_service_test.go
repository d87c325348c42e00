package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type capturedReset struct {
	user  *entities.AdminUser
	token string
}

type fakeResetSender struct {
	sent []capturedReset
}

func (f *fakeResetSender) SendPasswordReset(_ context.Context, user *entities.AdminUser, token string, _ time.Duration) error {
	f.sent = append(f.sent, capturedReset{user: user, token: token})
	return nil
}

func adminWithPassword(t *testing.T, password string) *entities.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entities.AdminUser{ID: "u1", Email: "admin@example.com", PasswordHash: string(hash)}
}

func authConfig() services.AuthConfig {
	return services.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, ResetTokenTTL: time.Hour}
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	users := new(MockAdminUserRepository)
	svc := services.NewAuthService(users, nil, authConfig())
	ctx := context.Background()

	users.On("GetByEmail", ctx, "admin@example.com").Return(adminWithPassword(t, "s3cret-pass"), nil)
	users.On("Update", ctx, mock.AnythingOfType("*entities.AdminUser")).Return(nil)

	token, err := svc.Login(ctx, " Admin@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.NotNil(t, token.User.LastLoginAt)

	claims, err := svc.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	users := new(MockAdminUserRepository)
	svc := services.NewAuthService(users, nil, authConfig())
	ctx := context.Background()

	users.On("GetByEmail", ctx, "admin@example.com").Return(adminWithPassword(t, "s3cret-pass"), nil)
	users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.NewNotFoundError("not found"))

	_, err := svc.Login(ctx, "admin@example.com", "wrong-pass")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	_, err = svc.Login(ctx, "nobody@example.com", "whatever1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	_, err = svc.Login(ctx, "", "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestAuthService_ValidateTokenRejectsForeignSignature(t *testing.T) {
	users := new(MockAdminUserRepository)
	issuer := services.NewAuthService(users, nil, services.AuthConfig{JWTSecret: "other-secret"})
	ctx := context.Background()

	users.On("GetByEmail", ctx, "admin@example.com").Return(adminWithPassword(t, "s3cret-pass"), nil)
	users.On("Update", ctx, mock.Anything).Return(nil)

	token, err := issuer.Login(ctx, "admin@example.com", "s3cret-pass")
	require.NoError(t, err)

	verifier := services.NewAuthService(users, nil, authConfig())
	_, err = verifier.ValidateToken(token.Token)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))

	_, err = verifier.ValidateToken("not.a.token")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	users := new(MockAdminUserRepository)
	mailer := &fakeResetSender{}
	svc := services.NewAuthService(users, mailer, authConfig())
	ctx := context.Background()

	admin := adminWithPassword(t, "old-password")
	users.On("GetByEmail", ctx, "admin@example.com").Return(admin, nil)
	users.On("Update", ctx, admin).Return(nil)

	require.NoError(t, svc.ForgotPassword(ctx, "admin@example.com"))
	require.Len(t, mailer.sent, 1)
	token := mailer.sent[0].token
	assert.NotEmpty(t, token)
	assert.NotEqual(t, token, admin.ResetTokenHash)
	require.NotNil(t, admin.ResetExpiresAt)

	users.On("GetByResetTokenHash", ctx, admin.ResetTokenHash).Return(admin, nil)

	err := svc.ResetPassword(ctx, token, "short")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	require.NoError(t, svc.ResetPassword(ctx, token, "brand-new-password"))
	assert.Empty(t, admin.ResetTokenHash)
	assert.Nil(t, admin.ResetExpiresAt)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("brand-new-password")))
}

func TestAuthService_ForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	users := new(MockAdminUserRepository)
	mailer := &fakeResetSender{}
	svc := services.NewAuthService(users, mailer, authConfig())
	ctx := context.Background()

	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperrors.NewNotFoundError("not found"))

	assert.NoError(t, svc.ForgotPassword(ctx, "ghost@example.com"))
	assert.Empty(t, mailer.sent)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_ResetPasswordExpiredToken(t *testing.T) {
	users := new(MockAdminUserRepository)
	svc := services.NewAuthService(users, nil, authConfig())
	ctx := context.Background()

	expired := time.Now().Add(-time.Minute)
	admin := adminWithPassword(t, "old-password")
	admin.ResetTokenHash = "stale"
	admin.ResetExpiresAt = &expired
	users.On("GetByResetTokenHash", ctx, mock.Anything).Return(admin, nil)

	err := svc.ResetPassword(ctx, "some-token", "brand-new-password")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the first account", func(t *testing.T) {
		users := new(MockAdminUserRepository)
		svc := services.NewAuthService(users, nil, authConfig())
		users.On("Count", ctx).Return(0, nil)
		users.On("Create", ctx, mock.MatchedBy(func(u *entities.AdminUser) bool {
			return u.Email == "owner@example.com" && u.PasswordHash != "" && u.PasswordHash != "initial-pass"
		})).Return(nil)

		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "Owner@example.com", "initial-pass"))
		users.AssertExpectations(t)
	})

	t.Run("skips when accounts exist", func(t *testing.T) {
		users := new(MockAdminUserRepository)
		svc := services.NewAuthService(users, nil, authConfig())
		users.On("Count", ctx).Return(1, nil)

		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, "owner@example.com", "initial-pass"))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
