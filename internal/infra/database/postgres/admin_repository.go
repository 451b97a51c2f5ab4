package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cablecom/leads-api/internal/entity"
)

type AdminUserRepository struct {
	DB *sql.DB
}

func NewAdminUserRepository(db *sql.DB) *AdminUserRepository {
	return &AdminUserRepository{DB: db}
}

func (r *AdminUserRepository) Create(ctx context.Context, u *entity.AdminUser) error {
	query := `
		INSERT INTO admin_users (username, password_hash, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, u.Username, u.PasswordHash, u.Email).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrUsernameTaken
		}
		return fmt.Errorf("insert admin user: %w", err)
	}
	return nil
}

func (r *AdminUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.AdminUser, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM admin_users
		WHERE lower(username) = lower($1) OR lower(email) = lower($2)
		ORDER BY id ASC
		LIMIT 1
	`
	var u entity.AdminUser
	err := r.DB.QueryRowContext(ctx, query, username, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	return &u, nil
}

func (r *AdminUserRepository) FindByUsername(ctx context.Context, username string) (*entity.AdminUser, error) {
	query := `SELECT id, username, email, created_at FROM admin_users WHERE lower(username) = lower($1)`
	var u entity.AdminUser
	err := r.DB.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin user: %w", err)
	}
	return &u, nil
}

func (r *AdminUserRepository) Update(ctx context.Context, u *entity.AdminUser) error {
	query := `UPDATE admin_users SET username = $1, email = $2, password_hash = $3 WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrUsernameTaken
		}
		return fmt.Errorf("update admin user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrAdminNotFound
	}
	return nil
}

func (r *AdminUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admin users: %w", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
