// Package database selects and opens the storage backend for leads and
// administrator accounts.
package database

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/cablecom/leads-api/internal/entity"
	"github.com/cablecom/leads-api/internal/infra/database/postgres"
	"github.com/cablecom/leads-api/internal/infra/database/sqlite"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Repositories bundles the backend chosen at startup. Handlers and use cases
// only ever see the interfaces.
type Repositories struct {
	Backend string
	DB      *sql.DB
	Leads   entity.LeadRepositoryInterface
	Admins  entity.AdminUserRepositoryInterface
}

// BackendFor returns the backend a connection string selects: postgres for
// postgres:// or postgresql:// URLs, sqlite otherwise.
func BackendFor(databaseURL string) string {
	u := strings.ToLower(strings.TrimSpace(databaseURL))
	if strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://") {
		return BackendPostgres
	}
	return BackendSQLite
}

// Open connects to the backend, applies the schema and builds the repositories.
func Open(ctx context.Context, databaseURL, sqlitePath string, log *zap.Logger) (*Repositories, error) {
	if BackendFor(databaseURL) == BackendPostgres {
		db, err := postgres.NewDBConnection(databaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database ready", zap.String("backend", BackendPostgres))
		return &Repositories{
			Backend: BackendPostgres,
			DB:      db,
			Leads:   postgres.NewLeadRepository(db),
			Admins:  postgres.NewAdminUserRepository(db),
		}, nil
	}

	db, err := sqlite.NewDBConnection(sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("database ready", zap.String("backend", BackendSQLite), zap.String("path", sqlitePath))
	return &Repositories{
		Backend: BackendSQLite,
		DB:      db,
		Leads:   sqlite.NewLeadRepository(db),
		Admins:  sqlite.NewAdminUserRepository(db),
	}, nil
}

func (r *Repositories) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
