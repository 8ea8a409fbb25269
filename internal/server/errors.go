package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/adaptive-tutor/internal/essay"
	"github.com/jonathan/adaptive-tutor/internal/tutor"
)

// ErrValidation indicates an invalid path or query parameter
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		requestErr    *tutor.RequestError
		inputErr      *essay.InputError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &requestErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.Is(err, tutor.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
