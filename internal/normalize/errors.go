package normalize

import "fmt"

// MalformedResponseError is returned when the generated text cannot be used as a JSON document
type MalformedResponseError struct {
	Reason  string
	Snippet string // leading part of the offending text, for logs
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// Defaulted records a field that was missing or invalid and received a safe default.
// It is a normal event, not an error.
type Defaulted struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (d Defaulted) String() string {
	return d.Field + ": " + d.Reason
}

const (
	reasonMissing   = "missing"
	reasonWrongType = "wrong type"
	reasonOutOfSet  = "value not allowed"
	reasonFiltered  = "entries dropped"
)
