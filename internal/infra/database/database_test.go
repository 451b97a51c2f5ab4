package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBackendFor(t *testing.T) {
	assert.Equal(t, BackendPostgres, BackendFor("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, BackendPostgres, BackendFor("PostgreSQL://db.example.com/leads"))
	assert.Equal(t, BackendSQLite, BackendFor(""))
	assert.Equal(t, BackendSQLite, BackendFor("file:leads.db"))
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cable-com.db")

	repos, err := Open(context.Background(), "", path, zap.NewNop())
	require.NoError(t, err)
	defer repos.Close()

	assert.Equal(t, BackendSQLite, repos.Backend)
	assert.NotNil(t, repos.Leads)
	assert.NotNil(t, repos.Admins)

	n, err := repos.Admins.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
