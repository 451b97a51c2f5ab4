package entity

import (
	"context"
	"time"
)

type AdminUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminUserRepositoryInterface interface {
	// Create returns ErrUsernameTaken when the username already exists.
	Create(ctx context.Context, u *AdminUser) error
	// FindByUsernameOrEmail matches case-insensitively and includes the hash.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*AdminUser, error)
	// FindByUsername never loads the password hash.
	FindByUsername(ctx context.Context, username string) (*AdminUser, error)
	Update(ctx context.Context, u *AdminUser) error
	Count(ctx context.Context) (int, error)
}
