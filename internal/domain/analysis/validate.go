package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValidateRequest checks the shape of a caller request. Language and filename
// pass through unchanged; defaults are applied separately by ApplyDefaults.
func ValidateRequest(req Request) (Request, error) {
	if strings.TrimSpace(req.Code) == "" {
		return Request{}, &ValidationError{Field: "code", Reason: "cannot be empty"}
	}
	return req, nil
}

// ApplyDefaults fills optional fields the pipeline needs downstream. A
// missing language is taken from the filename extension, then DefaultLanguage.
func ApplyDefaults(req Request) Request {
	if strings.TrimSpace(req.Language) == "" {
		req.Language = DetectLanguage(req.Filename)
	}
	if req.Language == "" {
		req.Language = DefaultLanguage
	}
	return req
}

// Candidate is one array element exactly as the model emitted it. Numeric
// fields are kept raw so their JSON type can be checked.
type Candidate struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Type        string          `json:"type"`
	Severity    string          `json:"severity"`
	Title       *string         `json:"title"`
	Description string          `json:"description"`
	Line        json.RawMessage `json:"line"`
	Column      json.RawMessage `json:"column,omitempty"`
	EndLine     json.RawMessage `json:"endLine,omitempty"`
	EndColumn   json.RawMessage `json:"endColumn,omitempty"`
	Suggestion  string          `json:"suggestion,omitempty"`
	Category    string          `json:"category"`
}

// ValidateIssue turns a candidate into an Issue or rejects it. Enum values are
// trimmed and lower-cased before the membership check; unusable optional
// position fields are dropped instead of failing the issue.
func ValidateIssue(c Candidate) (Issue, error) {
	is := Issue{
		ID:          rawID(c.ID),
		Type:        IssueType(strings.ToLower(strings.TrimSpace(c.Type))),
		Severity:    Severity(strings.ToLower(strings.TrimSpace(c.Severity))),
		Description: strings.TrimSpace(c.Description),
		Suggestion:  strings.TrimSpace(c.Suggestion),
		Category:    strings.TrimSpace(c.Category),
	}
	if !is.Type.Valid() {
		return Issue{}, &ValidationError{Field: "type", Reason: "must be one of " + joinEnum(IssueTypes) + ", got " + strconv.Quote(c.Type)}
	}
	if !is.Severity.Valid() {
		return Issue{}, &ValidationError{Field: "severity", Reason: "must be one of " + joinEnum(Severities) + ", got " + strconv.Quote(c.Severity)}
	}
	if c.Title == nil || strings.TrimSpace(*c.Title) == "" {
		return Issue{}, &ValidationError{Field: "title", Reason: "is required"}
	}
	is.Title = strings.TrimSpace(*c.Title)

	line, ok, err := rawInt(c.Line)
	if err != nil {
		return Issue{}, &ValidationError{Field: "line", Reason: err.Error()}
	}
	if !ok {
		return Issue{}, &ValidationError{Field: "line", Reason: "is required"}
	}
	if line < 1 {
		return Issue{}, &ValidationError{Field: "line", Reason: "must be >= 1"}
	}
	is.Line = line

	if v, ok, err := rawInt(c.EndLine); err == nil && ok {
		if v < line {
			return Issue{}, &ValidationError{Field: "endLine", Reason: "must be >= line"}
		}
		is.EndLine = &v
	}
	is.Column = positiveOrNil(c.Column)
	is.EndColumn = positiveOrNil(c.EndColumn)
	return is, nil
}

// rawInt reads an integral JSON number. ok is false when the field is absent
// or null.
func rawInt(raw json.RawMessage) (int, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false, nil
	}
	if raw[0] == '"' {
		return 0, false, errNotNumber
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, false, errNotNumber
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false, errNotInteger
	}
	return int(f), true, nil
}

func positiveOrNil(raw json.RawMessage) *int {
	v, ok, err := rawInt(raw)
	if err != nil || !ok || v < 1 {
		return nil
	}
	return &v
}

// rawID accepts string and numeric ids; anything else counts as missing.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	}
	return ""
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

const (
	errNotNumber  fieldError = "must be a number"
	errNotInteger fieldError = "must be an integer"
)

func joinEnum[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, "|")
}
