package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/server/repositories/repomanager"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open returns the PostgreSQL store for dsn, migrated to the latest schema,
// or a MemoryStore when dsn is empty. The close function releases the
// connection pool.
func Open(ctx context.Context, dsn string, timeout time.Duration, m repomanager.RepositoryManager) (Store, func() error, error) {
	if dsn == "" {
		return NewMemoryStore(), func() error { return nil }, nil
	}

	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}
	return NewSQLStore(db, m, timeout), db.Close, nil
}
