package analysis

import (
	"errors"
	"fmt"
)

// ErrUnparsableOutput marks model output that holds no JSON array at all.
var ErrUnparsableOutput = errors.New("unparsable model output")

// ErrNoValidIssues marks a non-empty issue array in which every element
// failed validation.
var ErrNoValidIssues = errors.New("model output has no valid issues")

// ValidationError reports a request or issue that does not fit the schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NormalizationError means the model answered but nothing usable could be
// parsed out of the answer. It is distinct from ai.ModelError on purpose so
// operators can tell "upstream down" from "upstream incoherent".
type NormalizationError struct {
	Err error
	Raw string // truncated model output, for logs
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize model output: %v", e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
