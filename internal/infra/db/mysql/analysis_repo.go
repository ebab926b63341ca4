package mysql

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
  id               VARCHAR(64)  NOT NULL PRIMARY KEY,
  owner_id         VARCHAR(255) NULL,
  code             MEDIUMTEXT   NOT NULL,
  language         VARCHAR(64)  NOT NULL,
  filename         VARCHAR(512) NULL,
  issues_json      JSON         NOT NULL,
  analysis_time_ms BIGINT       NOT NULL,
  created_at       DATETIME(6)  NOT NULL,
  INDEX idx_code_analyses_owner_created (owner_id, created_at)
) DEFAULT CHARSET=utf8mb4;`

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// EnsureSchema creates the table when it does not exist yet.
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts an analysis record. Records are never updated, so a duplicate
// id fails.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO code_analyses
  (id, owner_id, code, language, filename, issues_json, analysis_time_ms, created_at)
VALUES (?,?,?,?,?,?,?,?);`

	issues, err := dbutil.EncodeIssues(a.Issues)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		a.ID, dbutil.NullString(a.OwnerID), a.Code, a.Language, dbutil.NullString(a.Filename),
		issues, a.AnalysisTime, dbutil.CreatedAt(a),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Get by ID; (nil, nil) when missing
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	q := `SELECT ` + dbutil.Columns + ` FROM code_analyses WHERE id=? LIMIT 1;`
	rec, err := dbutil.ScanRecord(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// ListByOwner returns a page ordered by created_at desc
func (r *AnalysisRepository) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]*domain.Record, error) {
	limit, offset := dbutil.Paging(page, pageSize)

	var (
		rows *sql.Rows
		err  error
	)
	if ownerID == "" {
		q := `SELECT ` + dbutil.Columns + ` FROM code_analyses WHERE owner_id IS NULL
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?;`
		rows, err = r.db.QueryContext(ctx, q, limit, offset)
	} else {
		q := `SELECT ` + dbutil.Columns + ` FROM code_analyses WHERE owner_id=?
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?;`
		rows, err = r.db.QueryContext(ctx, q, ownerID, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()
	return dbutil.ScanRecords(rows)
}
