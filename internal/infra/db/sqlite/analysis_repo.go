package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
	"github.com/bryanwahyu/codereview/internal/infra/db/dbutil"
)

const schema = `
CREATE TABLE IF NOT EXISTS code_analyses (
	id               TEXT PRIMARY KEY,
	owner_id         TEXT,
	code             TEXT NOT NULL,
	language         TEXT NOT NULL,
	filename         TEXT,
	issues_json      TEXT NOT NULL,
	analysis_time_ms INTEGER NOT NULL,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_code_analyses_owner_created ON code_analyses (owner_id, created_at);`

// AnalysisRepository stores analyses in SQLite. Timestamps are fixed-width
// UTC text so ORDER BY created_at is chronological.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO code_analyses
	(id, owner_id, code, language, filename, issues_json, analysis_time_ms, created_at)
VALUES (?,?,?,?,?,?,?,?);`

	issues, err := dbutil.EncodeIssues(a.Issues)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q,
		a.ID, dbutil.NullString(a.OwnerID), a.Code, a.Language, dbutil.NullString(a.Filename),
		issues, a.AnalysisTime, dbutil.CreatedAt(a).Format(dbutil.TimeLayout),
	); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	const q = `SELECT ` + dbutil.Columns + ` FROM code_analyses WHERE id = ? LIMIT 1;`
	rec, err := dbutil.ScanRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *AnalysisRepository) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]*domain.Record, error) {
	limit, offset := dbutil.Paging(page, pageSize)

	const q = `SELECT ` + dbutil.Columns + `
FROM code_analyses
WHERE owner_id IS ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, dbutil.NullString(ownerID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()
	return dbutil.ScanRecords(rows)
}
