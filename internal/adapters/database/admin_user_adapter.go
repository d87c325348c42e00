package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const adminUsersTable = "admin_users"

var adminUserColumns = []interface{}{
	"id", "email", "name", "password_hash", "reset_token_hash",
	"reset_expires_at", "last_login_at", "created_at", "updated_at",
}

type adminUserRow struct {
	ID             string         `db:"id"`
	Email          string         `db:"email"`
	Name           sql.NullString `db:"name"`
	PasswordHash   string         `db:"password_hash"`
	ResetTokenHash sql.NullString `db:"reset_token_hash"`
	ResetExpiresAt sql.NullTime   `db:"reset_expires_at"`
	LastLoginAt    sql.NullTime   `db:"last_login_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *adminUserRow) toEntity() *entities.AdminUser {
	u := &entities.AdminUser{
		ID:             r.ID,
		Email:          r.Email,
		Name:           r.Name.String,
		PasswordHash:   r.PasswordHash,
		ResetTokenHash: r.ResetTokenHash.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.ResetExpiresAt.Valid {
		t := r.ResetExpiresAt.Time
		u.ResetExpiresAt = &t
	}
	if r.LastLoginAt.Valid {
		t := r.LastLoginAt.Time
		u.LastLoginAt = &t
	}
	return u
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// AdminUserAdapter implements the AdminUserRepository interface
type AdminUserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAdminUserAdapter creates a new admin user adapter
func NewAdminUserAdapter(client *postgres.Client) repositories.AdminUserRepository {
	return &AdminUserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts an admin account
func (a *AdminUserAdapter) Create(ctx context.Context, user *entities.AdminUser) error {
	query, args, err := a.db.Insert(adminUsersTable).Rows(goqu.Record{
		"id":            user.ID,
		"email":         strings.ToLower(user.Email),
		"name":          user.Name,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("admin %s already exists", user.Email))
		}
		return apperrors.NewInternalError("failed to create admin user", err)
	}
	return nil
}

// GetByID retrieves an admin by ID
func (a *AdminUserAdapter) GetByID(ctx context.Context, id string) (*entities.AdminUser, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, "admin user not found")
}

// GetByEmail retrieves an admin by email, case-insensitively
func (a *AdminUserAdapter) GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error) {
	return a.getOne(ctx, goqu.Ex{"email": strings.ToLower(strings.TrimSpace(email))}, "admin user not found")
}

// GetByResetTokenHash retrieves the admin holding a reset token
func (a *AdminUserAdapter) GetByResetTokenHash(ctx context.Context, tokenHash string) (*entities.AdminUser, error) {
	return a.getOne(ctx, goqu.Ex{"reset_token_hash": tokenHash}, "reset token not found")
}

func (a *AdminUserAdapter) getOne(ctx context.Context, where goqu.Ex, notFound string) (*entities.AdminUser, error) {
	query, args, err := a.db.Select(adminUserColumns...).
		From(adminUsersTable).
		Where(where).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row adminUserRow
	err = a.client.DBX().GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get admin user", err)
	}
	return row.toEntity(), nil
}

// Update writes the mutable account fields
func (a *AdminUserAdapter) Update(ctx context.Context, user *entities.AdminUser) error {
	user.UpdatedAt = time.Now()

	query, args, err := a.db.Update(adminUsersTable).
		Set(goqu.Record{
			"name":             user.Name,
			"password_hash":    user.PasswordHash,
			"reset_token_hash": nullIfEmpty(user.ResetTokenHash),
			"reset_expires_at": nullTime(user.ResetExpiresAt),
			"last_login_at":    nullTime(user.LastLoginAt),
			"updated_at":       user.UpdatedAt,
		}).
		Where(goqu.Ex{"id": user.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update admin user", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("admin user with id %s not found", user.ID))
	}
	return nil
}

// Count returns the number of admin accounts
func (a *AdminUserAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).From(adminUsersTable).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}
	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count admin users", err)
	}
	return count, nil
}
