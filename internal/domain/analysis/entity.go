package analysis

import "time"

// DefaultLanguage dipakai kalau request tidak bawa language
const DefaultLanguage = "javascript"

// IssueType enum
type IssueType string

const (
	TypeError         IssueType = "error"
	TypeImprovement   IssueType = "improvement"
	TypeWarning       IssueType = "warning"
	TypeSecurity      IssueType = "security"
	TypeStyle         IssueType = "style"
	TypeDocumentation IssueType = "documentation"
)

// IssueTypes lists every accepted issue type in prompt order.
var IssueTypes = []IssueType{TypeError, TypeImprovement, TypeWarning, TypeSecurity, TypeStyle, TypeDocumentation}

func (t IssueType) Valid() bool {
	for _, v := range IssueTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Severity enum
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists every accepted severity from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

func (s Severity) Valid() bool {
	for _, v := range Severities {
		if s == v {
			return true
		}
	}
	return false
}

// Request is the caller input for one analysis. An empty Language means the
// caller did not send one.
type Request struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Issue is one finding reported by the model. Line is 1-based and always set.
type Issue struct {
	ID          string    `json:"id"`
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Line        int       `json:"line"`
	Column      *int      `json:"column,omitempty"`
	EndLine     *int      `json:"endLine,omitempty"`
	EndColumn   *int      `json:"endColumn,omitempty"`
	Suggestion  string    `json:"suggestion,omitempty"`
	Category    string    `json:"category"`
}

// Result is the envelope of one analysis run. It is never mutated after the
// orchestrator builds it.
type Result struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Language     string    `json:"language"`
	Issues       []Issue   `json:"issues"`
	AnalysisTime int64     `json:"analysisTime"` // milliseconds
	Timestamp    time.Time `json:"timestamp"`
}

// Record is the persisted form of a Result.
type Record struct {
	Result
	OwnerID  string `json:"ownerId,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// SeverityCounts value object
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Summary aggregates issues across one or more results.
type Summary struct {
	Counts SeverityCounts    `json:"counts"`
	ByType map[IssueType]int `json:"byType"`
}

// Summarize counts issues by severity and type.
func Summarize(results ...*Result) Summary {
	s := Summary{ByType: map[IssueType]int{}}
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, is := range r.Issues {
			switch is.Severity {
			case SeverityCritical:
				s.Counts.Critical++
			case SeverityHigh:
				s.Counts.High++
			case SeverityMedium:
				s.Counts.Medium++
			case SeverityLow:
				s.Counts.Low++
			}
			s.Counts.Total++
			s.ByType[is.Type]++
		}
	}
	return s
}
