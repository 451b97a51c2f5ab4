package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cablecom/leads-api/internal/entity"
	"github.com/cablecom/leads-api/internal/infra/database/sqlite"
)

var testAdmin = DefaultAdmin{
	Username: "ryan",
	Email:    "ryan@cable-comservices.com",
	Password: "SecurePassword22!",
}

func newAdminRepo(t *testing.T) *sqlite.AdminUserRepository {
	t.Helper()
	db, err := sqlite.NewDBConnection(filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(context.Background(), db))
	t.Cleanup(func() { db.Close() })
	return sqlite.NewAdminUserRepository(db)
}

func TestEnsureDefaultAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newAdminRepo(t)
	svc := NewCredentialService(repo, testAdmin, nil)

	first, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	_, err = svc.VerifyCredentials(ctx, testAdmin.Username, testAdmin.Password)
	require.NoError(t, err)

	second, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	u, err := svc.VerifyCredentials(ctx, testAdmin.Email, testAdmin.Password)
	require.NoError(t, err)
	assert.Equal(t, testAdmin.Username, u.Username)
}

func TestEnsureDefaultAdmin_KeepsHashWhenPasswordMatches(t *testing.T) {
	ctx := context.Background()
	repo := newAdminRepo(t)
	svc := NewCredentialService(repo, testAdmin, nil)

	_, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	before, err := repo.FindByUsernameOrEmail(ctx, testAdmin.Username, testAdmin.Email)
	require.NoError(t, err)

	_, err = svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	after, err := repo.FindByUsernameOrEmail(ctx, testAdmin.Username, testAdmin.Email)
	require.NoError(t, err)

	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestEnsureDefaultAdmin_SynchronizesDivergentRow(t *testing.T) {
	ctx := context.Background()
	repo := newAdminRepo(t)

	old := NewCredentialService(repo, testAdmin, nil)
	id, err := old.CreateAdminUser(ctx, "legacy", "old-password", testAdmin.Email)
	require.NoError(t, err)

	svc := NewCredentialService(repo, testAdmin, nil)
	u, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, testAdmin.Username, u.Username)
	assert.Empty(t, u.PasswordHash)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.VerifyCredentials(ctx, testAdmin.Username, testAdmin.Password)
	assert.NoError(t, err)
	_, err = svc.VerifyCredentials(ctx, testAdmin.Username, "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateAdminUser_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc := NewCredentialService(newAdminRepo(t), testAdmin, nil)

	_, err := svc.CreateAdminUser(ctx, "ops", "pw", "ops@x.com")
	require.NoError(t, err)

	_, err = svc.CreateAdminUser(ctx, "ops", "pw2", "ops2@x.com")
	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	assert.ErrorIs(t, err, entity.ErrUsernameTaken)
}

func TestVerifyCredentials_NoSideEffects(t *testing.T) {
	ctx := context.Background()
	repo := newAdminRepo(t)
	svc := NewCredentialService(repo, testAdmin, nil)
	_, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)

	before, err := repo.FindByUsernameOrEmail(ctx, testAdmin.Username, testAdmin.Email)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.VerifyCredentials(ctx, testAdmin.Username, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = svc.VerifyCredentials(ctx, "nobody", testAdmin.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := svc.VerifyCredentials(ctx, "RYAN", testAdmin.Password)
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)

	after, err := repo.FindByUsernameOrEmail(ctx, testAdmin.Username, testAdmin.Email)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc := NewCredentialService(newAdminRepo(t), testAdmin, nil)
	_, err := svc.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)

	u, err := svc.GetUser(ctx, testAdmin.Username)
	require.NoError(t, err)
	assert.Equal(t, testAdmin.Email, u.Email)
	assert.Empty(t, u.PasswordHash)

	_, err = svc.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, entity.ErrAdminNotFound)
}
