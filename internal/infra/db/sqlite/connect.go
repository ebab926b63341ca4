package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/bryanwahyu/codereview/internal/infra/db/dbutil"
)

// Connect opens (or creates) a SQLite database file. ":memory:" is accepted
// for tests; the pool is pinned to one connection so every caller sees the
// same in-memory database and writes are serialized.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	db, err := dbutil.Open(ctx, "sqlite", path, 1)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	return db, nil
}
