package repositories

import (
	"context"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// AdminUserRepository defines the interface for admin account data operations
type AdminUserRepository interface {
	Create(ctx context.Context, user *entities.AdminUser) error
	GetByID(ctx context.Context, id string) (*entities.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*entities.AdminUser, error)
	Update(ctx context.Context, user *entities.AdminUser) error
	Count(ctx context.Context) (int, error)
}
