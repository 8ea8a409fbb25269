package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/adaptive-tutor/internal/llm"
	"github.com/jonathan/adaptive-tutor/internal/normalize"
)

// ErrServiceUnavailable is matched by every error returned when an operation
// has no safe fallback and generation did not produce a usable result
var ErrServiceUnavailable = errors.New("service temporarily unavailable")

// UnavailableError reports a failed essay or theme operation
type UnavailableError struct {
	Operation string
	Cause     error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v: %v", e.Operation, ErrServiceUnavailable, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, ErrServiceUnavailable)
}

func (e *UnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrServiceUnavailable}
	}
	return []error{ErrServiceUnavailable, e.Cause}
}

// RequestError reports a feedback request that fails validation
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid feedback request: %s %s", e.Field, e.Message)
}

// errorKind classifies a generation failure for the errors counter
func errorKind(err error) string {
	var genErr *llm.GenerationError
	var malformed *normalize.MalformedResponseError
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &genErr) && genErr.Timeout:
		return "timeout"
	case errors.As(err, &genErr) && genErr.StatusCode != 0:
		return "status"
	case errors.As(err, &genErr):
		return "transport"
	case errors.As(err, &malformed):
		return "malformed"
	default:
		return "other"
	}
}
