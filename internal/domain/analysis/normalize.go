package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Phase records how the issue array was found in the model output.
type Phase int

const (
	// PhaseUnparsable: no JSON array could be recovered.
	PhaseUnparsable Phase = iota
	// PhaseParsed: the whole output was a JSON array.
	PhaseParsed
	// PhaseExtracted: the array was cut out of surrounding prose.
	PhaseExtracted
)

func (p Phase) String() string {
	switch p {
	case PhaseParsed:
		return "parsed"
	case PhaseExtracted:
		return "extracted"
	default:
		return "unparsable"
	}
}

// Rejection is one array element dropped during validation.
type Rejection struct {
	Index int
	Err   error
}

// Normalized is the outcome of a successful Normalize.
type Normalized struct {
	Issues   []Issue
	Phase    Phase
	Rejected []Rejection
}

// NewIssueID builds an id for an issue the model left without one.
func NewIssueID(index int) string {
	return fmt.Sprintf("issue_%d_%s", index, uuid.NewString()[:8])
}

// Normalize converts raw model text into validated issues. It parses, then
// validates each element on its own, then assigns missing ids. Elements that
// fail validation are dropped. Output with no recoverable array, or a
// non-empty array where nothing survives validation, is an error and never an
// empty success. newID may be nil.
func Normalize(raw string, newID func(index int) string) (Normalized, error) {
	if newID == nil {
		newID = NewIssueID
	}

	elems, phase := extract(raw)
	if phase == PhaseUnparsable {
		return Normalized{}, &NormalizationError{Err: ErrUnparsableOutput, Raw: truncate(raw, 512)}
	}

	out := Normalized{Issues: make([]Issue, 0, len(elems)), Phase: phase}
	for i, el := range elems {
		var c Candidate
		if err := json.Unmarshal(el, &c); err != nil {
			out.Rejected = append(out.Rejected, Rejection{Index: i, Err: &ValidationError{Reason: err.Error()}})
			continue
		}
		is, err := ValidateIssue(c)
		if err != nil {
			out.Rejected = append(out.Rejected, Rejection{Index: i, Err: err})
			continue
		}
		out.Issues = append(out.Issues, is)
	}
	if len(elems) > 0 && len(out.Issues) == 0 {
		return Normalized{Phase: phase, Rejected: out.Rejected}, &NormalizationError{Err: ErrNoValidIssues, Raw: truncate(raw, 512)}
	}

	seen := make(map[string]bool, len(out.Issues))
	for i := range out.Issues {
		id := out.Issues[i].ID
		if id == "" || seen[id] {
			id = newID(i)
			for seen[id] {
				id = NewIssueID(i)
			}
			out.Issues[i].ID = id
		}
		seen[id] = true
	}
	return out, nil
}

// extract finds the JSON array: first the whole text, then the span between
// the first '[' and the last ']'.
func extract(raw string) ([]json.RawMessage, Phase) {
	if elems, ok := parseArray(raw); ok {
		return elems, PhaseParsed
	}
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, PhaseUnparsable
	}
	if elems, ok := parseArray(raw[start : end+1]); ok {
		return elems, PhaseExtracted
	}
	return nil, PhaseUnparsable
}

func parseArray(s string) ([]json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(s), &elems); err != nil {
		return nil, false
	}
	if elems == nil {
		elems = []json.RawMessage{}
	}
	return elems, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
