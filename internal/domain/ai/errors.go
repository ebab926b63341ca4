package ai

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is a configuration error: no API key was configured.
// It is raised before any network call and never retried.
var ErrMissingCredential = errors.New("ai credential not configured")

// Model error kinds.
var (
	ErrAuth            = errors.New("ai provider rejected credential")
	ErrQuotaExceeded   = errors.New("ai quota exceeded")
	ErrTransport       = errors.New("ai provider unavailable")
	ErrEmptyCompletion = errors.New("ai provider returned empty completion")
)

// ModelError wraps a failed completion call. Kind is one of ErrAuth,
// ErrQuotaExceeded, ErrTransport or ErrEmptyCompletion.
type ModelError struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *ModelError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsRateLimitOrTransport groups quota and transport failures: the upstream
// could not be reached or refused to serve.
func IsRateLimitOrTransport(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrTransport)
}

// IsModelError reports whether err came from the completion call itself.
func IsModelError(err error) bool {
	var me *ModelError
	return errors.As(err, &me)
}
