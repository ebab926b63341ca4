package analysis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneIssue = `{"type":"style","severity":"low","title":"Missing semicolon","description":"...","line":1,"category":"Style"}`

func seqID() func(int) string {
	n := 0
	return func(int) string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestNormalize_DirectArrayKeepsOrderAndIDs(t *testing.T) {
	raw := `[
		{"id":"a","type":"error","severity":"critical","title":"first","description":"d","line":1,"category":"Logic"},
		{"type":"warning","severity":"medium","title":"second","description":"d","line":2,"category":"Logic"},
		{"id":"c","type":"documentation","severity":"low","title":"third","description":"d","line":3,"category":"Documentation"}
	]`

	got, err := Normalize(raw, seqID())
	require.NoError(t, err)
	assert.Equal(t, PhaseParsed, got.Phase)
	assert.Empty(t, got.Rejected)

	var titles, ids []string
	for _, is := range got.Issues {
		titles = append(titles, is.Title)
		ids = append(ids, is.ID)
	}
	if diff := cmp.Diff([]string{"first", "second", "third"}, titles); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "gen-1", "c"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_ExtractsFromProse(t *testing.T) {
	raw := "Here you go:\n[" + oneIssue + "]\nHope that helps!"

	got, err := Normalize(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseExtracted, got.Phase)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, "Missing semicolon", got.Issues[0].Title)
	assert.NotEmpty(t, got.Issues[0].ID)
}

func TestNormalize_ExtractsFromCodeFence(t *testing.T) {
	raw := "```json\n[" + oneIssue + "]\n```"

	got, err := Normalize(raw, nil)
	require.NoError(t, err)
	assert.Len(t, got.Issues, 1)
}

func TestNormalize_ExtractsFromWrapperObject(t *testing.T) {
	got, err := Normalize(`{"issues":[`+oneIssue+`]}`, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseExtracted, got.Phase)
	assert.Len(t, got.Issues, 1)
}

func TestNormalize_DropsMalformedElement(t *testing.T) {
	raw := `[` + oneIssue + `,{"type":"style","severity":"extreme","title":"bad","description":"d","line":2,"category":"Style"}]`

	got, err := Normalize(raw, nil)
	require.NoError(t, err)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, "Missing semicolon", got.Issues[0].Title)
	require.Len(t, got.Rejected, 1)
	assert.Equal(t, 1, got.Rejected[0].Index)
	assert.True(t, IsValidation(got.Rejected[0].Err))
}

func TestNormalize_AllElementsMalformed(t *testing.T) {
	raw := `[{"type":"style","severity":"extreme","title":"a","line":1},{"type":"bogus","severity":"low","title":"b","line":2}]`

	got, err := Normalize(raw, nil)
	require.Error(t, err)

	var ne *NormalizationError
	require.True(t, errors.As(err, &ne))
	assert.ErrorIs(t, err, ErrNoValidIssues)
	assert.NotErrorIs(t, err, ErrUnparsableOutput)
	assert.Empty(t, got.Issues)
	assert.Len(t, got.Rejected, 2)
}

func TestNormalize_DropsWrongJSONTypes(t *testing.T) {
	raw := `[42, "text", {"type":"style","severity":"low","title":["x"],"line":1}, ` + oneIssue + `]`

	got, err := Normalize(raw, nil)
	require.NoError(t, err)
	assert.Len(t, got.Issues, 1)
	assert.Len(t, got.Rejected, 3)
}

func TestNormalize_IDsAreIdempotent(t *testing.T) {
	raw := `[
		{"id":"x1","type":"error","severity":"high","title":"a","description":"d","line":1,"category":"Logic"},
		{"id":"x2","type":"style","severity":"low","title":"b","description":"d","line":9,"category":"Style"}
	]`

	first, err := Normalize(raw, seqID())
	require.NoError(t, err)
	second, err := Normalize(raw, seqID())
	require.NoError(t, err)

	if diff := cmp.Diff(first.Issues, second.Issues); diff != "" {
		t.Errorf("normalizing twice changed issues (-first +second):\n%s", diff)
	}
	assert.Equal(t, "x1", first.Issues[0].ID)
	assert.Equal(t, "x2", first.Issues[1].ID)
}

func TestNormalize_DuplicateIDsReassigned(t *testing.T) {
	raw := `[
		{"id":"dup","type":"error","severity":"high","title":"a","line":1},
		{"id":"dup","type":"error","severity":"high","title":"b","line":2}
	]`

	got, err := Normalize(raw, seqID())
	require.NoError(t, err)
	require.Len(t, got.Issues, 2)
	assert.Equal(t, "dup", got.Issues[0].ID)
	assert.Equal(t, "gen-1", got.Issues[1].ID)
}

func TestNormalize_EmptyArrayIsSuccess(t *testing.T) {
	got, err := Normalize(" [] ", nil)
	require.NoError(t, err)
	assert.NotNil(t, got.Issues)
	assert.Empty(t, got.Issues)
}

func TestNormalize_Unparsable(t *testing.T) {
	for _, raw := range []string{"not json at all", "", "null", "{}", "] backwards [", "see [this] and [that"} {
		_, err := Normalize(raw, nil)
		require.Error(t, err, "raw %q", raw)

		var ne *NormalizationError
		assert.True(t, errors.As(err, &ne))
		assert.ErrorIs(t, err, ErrUnparsableOutput)
	}
}

func TestNewIssueID(t *testing.T) {
	a, b := NewIssueID(0), NewIssueID(0)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^issue_0_[0-9a-f]{8}$`, a)
}
