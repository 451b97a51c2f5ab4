package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cablecom/leads-api/internal/entity"
)

const PasswordHashCost = 10

// CredentialService owns the administrator accounts.
type CredentialService struct {
	Repo    entity.AdminUserRepositoryInterface
	Default DefaultAdmin
	Log     *zap.Logger
}

func NewCredentialService(repo entity.AdminUserRepositoryInterface, def DefaultAdmin, log *zap.Logger) *CredentialService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CredentialService{Repo: repo, Default: def, Log: log}
}

func (s *CredentialService) CreateAdminUser(ctx context.Context, username, password, email string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return 0, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}

	u := &entity.AdminUser{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.Repo.Create(ctx, u); err != nil {
		return 0, storageError("failed to create admin user", err)
	}
	return u.ID, nil
}

// VerifyCredentials accepts a username or an email as identifier. It never
// reveals which half of the pair was wrong and has no side effects.
func (s *CredentialService) VerifyCredentials(ctx context.Context, identifier, password string) (*entity.AdminUser, error) {
	u, err := s.Repo.FindByUsernameOrEmail(ctx, identifier, identifier)
	if errors.Is(err, entity.ErrAdminNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageError("Login failed. Please try again.", err)
	}

	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	u.PasswordHash = ""
	return u, nil
}

func (s *CredentialService) GetUser(ctx context.Context, username string) (*entity.AdminUser, error) {
	u, err := s.Repo.FindByUsername(ctx, username)
	if errors.Is(err, entity.ErrAdminNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, storageError("failed to load admin user", err)
	}
	return u, nil
}

// EnsureDefaultAdmin makes sure an account matching the configured default
// exists. A row matching the desired username or email is updated in place;
// the password is only re-hashed when the stored hash no longer verifies.
func (s *CredentialService) EnsureDefaultAdmin(ctx context.Context) (*entity.AdminUser, error) {
	want := s.Default

	u, err := s.Repo.FindByUsernameOrEmail(ctx, want.Username, want.Email)
	if errors.Is(err, entity.ErrAdminNotFound) {
		id, err := s.CreateAdminUser(ctx, want.Username, want.Password, want.Email)
		if err != nil {
			return nil, err
		}
		s.Log.Info("default admin created", zap.String("username", want.Username), zap.String("email", want.Email))
		return &entity.AdminUser{ID: id, Username: want.Username, Email: want.Email}, nil
	}
	if err != nil {
		return nil, storageError("failed to load admin user", err)
	}

	var changed []string
	if u.Username != want.Username {
		u.Username = want.Username
		changed = append(changed, "username")
	}
	if u.Email != want.Email {
		u.Email = want.Email
		changed = append(changed, "email")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(want.Password)) != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(want.Password), PasswordHashCost)
		if err != nil {
			return nil, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
		}
		u.PasswordHash = string(hash)
		changed = append(changed, "password")
	}

	if len(changed) > 0 {
		if err := s.Repo.Update(ctx, u); err != nil {
			return nil, storageError("failed to synchronize admin user", err)
		}
		s.Log.Info("default admin synchronized", zap.Int64("id", u.ID), zap.Strings("fields", changed))
	}

	u.PasswordHash = ""
	return u, nil
}
