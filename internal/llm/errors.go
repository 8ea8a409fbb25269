package llm

import "fmt"

// GenerationError is returned when the backend is unreachable, times out,
// or answers with a non-success status
type GenerationError struct {
	Op         string
	Timeout    bool
	StatusCode int // 0 when no HTTP status was received
	Cause      error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("generation failed: %s: timed out: %v", e.Op, e.Cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("generation failed: %s: status %d: %v", e.Op, e.StatusCode, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("generation failed: %s: %v", e.Op, e.Cause)
	default:
		return fmt.Sprintf("generation failed: %s", e.Op)
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
