// Package dbutil holds the row codec shared by the SQL analysis repositories.
package dbutil

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
)

// Columns is the select list every repository uses, in ScanRecord order.
const Columns = "id, owner_id, code, language, filename, issues_json, analysis_time_ms, created_at"

// TimeLayout is fixed width so text timestamps sort correctly.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// EncodeIssues renders issues for the JSON column; nil becomes "[]".
func EncodeIssues(issues []domain.Issue) (string, error) {
	if issues == nil {
		issues = []domain.Issue{}
	}
	b, err := json.Marshal(issues)
	if err != nil {
		return "", fmt.Errorf("encode issues: %w", err)
	}
	return string(b), nil
}

// NullString maps an empty or blank string to SQL NULL.
func NullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// CreatedAt returns the record timestamp in UTC, falling back to now.
func CreatedAt(r *domain.Record) time.Time {
	if r.Timestamp.IsZero() {
		return time.Now().UTC()
	}
	return r.Timestamp.UTC()
}

// ScanRecord reads one row selected with Columns.
func ScanRecord(s Scanner) (*domain.Record, error) {
	var (
		rec      domain.Record
		owner    sql.NullString
		filename sql.NullString
		issues   []byte
		created  any
	)
	if err := s.Scan(&rec.ID, &owner, &rec.Code, &rec.Language, &filename, &issues, &rec.AnalysisTime, &created); err != nil {
		return nil, err
	}
	rec.OwnerID = owner.String
	rec.Filename = filename.String

	if err := json.Unmarshal(issues, &rec.Issues); err != nil {
		return nil, fmt.Errorf("decode issues of %s: %w", rec.ID, err)
	}
	if rec.Issues == nil {
		rec.Issues = []domain.Issue{}
	}

	ts, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("decode created_at of %s: %w", rec.ID, err)
	}
	rec.Timestamp = ts
	return &rec, nil
}

// ScanRecords drains rows; it does not close them.
func ScanRecords(rows *sql.Rows) ([]*domain.Record, error) {
	out := []*domain.Record{}
	for rows.Next() {
		rec, err := ScanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Paging turns page/pageSize into limit/offset with the same defaults the
// service applies.
func Paging(page, pageSize int) (limit, offset int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}

func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	case int64:
		return time.Unix(0, t).UTC(), nil
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
