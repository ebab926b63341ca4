package postgres

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
  id               VARCHAR(64) PRIMARY KEY,
  owner_id         VARCHAR(255),
  code             TEXT        NOT NULL,
  language         VARCHAR(64) NOT NULL,
  filename         VARCHAR(512),
  issues_json      JSONB       NOT NULL,
  analysis_time_ms BIGINT      NOT NULL,
  created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_code_analyses_owner_created ON code_analyses (owner_id, created_at DESC);`

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts an analysis record (append-only, no upsert)
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO code_analyses
  (id, owner_id, code, language, filename, issues_json, analysis_time_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`

	issues, err := dbutil.EncodeIssues(a.Issues)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q,
		a.ID, dbutil.NullString(a.OwnerID), a.Code, a.Language, dbutil.NullString(a.Filename),
		issues, a.AnalysisTime, dbutil.CreatedAt(a),
	); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	q := `SELECT ` + dbutil.Columns + ` FROM code_analyses WHERE id=$1 LIMIT 1;`
	rec, err := dbutil.ScanRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListByOwner returns a page ordered by created_at desc; empty owner lists
// anonymous records.
func (r *AnalysisRepository) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]*domain.Record, error) {
	limit, offset := dbutil.Paging(page, pageSize)

	const q = `SELECT ` + dbutil.Columns + `
FROM code_analyses
WHERE owner_id IS NOT DISTINCT FROM $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, dbutil.NullString(ownerID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()
	return dbutil.ScanRecords(rows)
}
