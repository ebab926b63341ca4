package dbutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
)

type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return errors.New("column count mismatch")
	}
	for i, v := range r {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int64:
			*d = v.(int64)
		case *[]byte:
			*d = []byte(v.(string))
		case *any:
			*d = v
		default:
			if err := scanNull(d, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func scanNull(dest any, v any) error {
	type scanner interface{ Scan(any) error }
	s, ok := dest.(scanner)
	if !ok {
		return errors.New("unsupported destination")
	}
	return s.Scan(v)
}

func TestScanRecord(t *testing.T) {
	ts := time.Date(2024, 3, 2, 1, 0, 0, 5, time.UTC)
	row := fakeRow{"id-1", nil, "code", "go", "main.go", `[{"id":"i1","type":"error","severity":"high","title":"t","description":"d","line":3,"category":"Logic"}]`, int64(42), ts.Format(TimeLayout)}

	rec, err := ScanRecord(row)
	require.NoError(t, err)
	assert.Equal(t, "id-1", rec.ID)
	assert.Empty(t, rec.OwnerID)
	assert.Equal(t, "main.go", rec.Filename)
	assert.EqualValues(t, 42, rec.AnalysisTime)
	assert.True(t, ts.Equal(rec.Timestamp))
	require.Len(t, rec.Issues, 1)
	assert.Equal(t, domain.SeverityHigh, rec.Issues[0].Severity)
}

func TestScanRecord_EmptyIssues(t *testing.T) {
	row := fakeRow{"id-2", "alice", "code", "go", nil, `null`, int64(0), time.Now()}

	rec, err := ScanRecord(row)
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.OwnerID)
	assert.NotNil(t, rec.Issues)
}

func TestEncodeIssues(t *testing.T) {
	s, err := EncodeIssues(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
}

func TestTimeLayoutSorts(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(TimeLayout)
	b := time.Date(2024, 1, 1, 0, 0, 0, 100, time.UTC).Format(TimeLayout)
	assert.Less(t, a, b)
}

func TestPaging(t *testing.T) {
	l, o := Paging(0, 0)
	assert.Equal(t, 20, l)
	assert.Equal(t, 0, o)

	l, o = Paging(3, 10)
	assert.Equal(t, 10, l)
	assert.Equal(t, 20, o)
}
