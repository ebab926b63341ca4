package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/bryanwahyu/codereview/internal/infra/db/dbutil"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	return dbutil.Open(ctx, "postgres", dsn, 25)
}
