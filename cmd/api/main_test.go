package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminSync(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "leads.db"))
	t.Setenv("ADMIN_DEFAULT_USERNAME", "ops")
	t.Setenv("ADMIN_DEFAULT_EMAIL", "ops@cable-comservices.com")
	t.Setenv("ADMIN_DEFAULT_PASSWORD", "s3cret")

	for i := 0; i < 2; i++ {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"admin", "sync"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, out.String(), "admin ready: id=1 username=ops email=ops@cable-comservices.com backend=sqlite admins=1")
	}
}
