package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cablecom/leads-api/internal/entity"
)

type AdminUserRepository struct {
	DB *sql.DB
}

func NewAdminUserRepository(db *sql.DB) *AdminUserRepository {
	return &AdminUserRepository{DB: db}
}

func (r *AdminUserRepository) Create(ctx context.Context, u *entity.AdminUser) error {
	ts := formatTime(time.Now())
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO admin_users (username, password_hash, email, created_at) VALUES (?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Email, ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrUsernameTaken
		}
		return fmt.Errorf("insert admin user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	u.CreatedAt, _ = parseTime(ts)
	return nil
}

func (r *AdminUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.AdminUser, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM admin_users
		WHERE lower(username) = lower(?) OR lower(email) = lower(?)
		ORDER BY id ASC
		LIMIT 1
	`
	var (
		u         entity.AdminUser
		createdAt string
	)
	err := r.DB.QueryRowContext(ctx, query, username, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find admin user: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminUserRepository) FindByUsername(ctx context.Context, username string) (*entity.AdminUser, error) {
	var (
		u         entity.AdminUser
		createdAt string
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, email, created_at FROM admin_users WHERE lower(username) = lower(?)`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin user: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AdminUserRepository) Update(ctx context.Context, u *entity.AdminUser) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE admin_users SET username = ?, email = ?, password_hash = ? WHERE id = ?`,
		u.Username, u.Email, u.PasswordHash, u.ID,
	)
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
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
