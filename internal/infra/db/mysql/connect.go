package mysql

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/codereview/internal/infra/db/dbutil"
)

// Connect opens MySQL; the DSN must carry parseTime=true.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	return dbutil.Open(ctx, "mysql", dsn, 25)
}
