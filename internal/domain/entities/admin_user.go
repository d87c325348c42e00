package entities

import "time"

// AdminUser is a CMS administrator.
type AdminUser struct {
	ID             string     `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	Name           string     `json:"name" db:"name"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	ResetTokenHash string     `json:"-" db:"reset_token_hash"`
	ResetExpiresAt *time.Time `json:"-" db:"reset_expires_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// ResetTokenValid reports whether a reset token is outstanding and unexpired at now.
func (u *AdminUser) ResetTokenValid(now time.Time) bool {
	return u.ResetTokenHash != "" && u.ResetExpiresAt != nil && now.Before(*u.ResetExpiresAt)
}

// AuthToken is returned on successful login.
type AuthToken struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *AdminUser `json:"user"`
}

// AdminClaims are the identity fields carried by an admin session token.
type AdminClaims struct {
	UserID string
	Email  string
}
