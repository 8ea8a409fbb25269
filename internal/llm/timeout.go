package llm

import (
	"context"
	"errors"
	"time"
)

// timeoutClient bounds every Generate call of the wrapped client
type timeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout wraps a client so every call is bounded by timeout.
// An expired deadline surfaces as a *GenerationError with Timeout set;
// cancellation of the caller's context is propagated unchanged to the backend.
func WithTimeout(client Client, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if tc, ok := client.(*timeoutClient); ok {
		return &timeoutClient{next: tc.next, timeout: timeout}
	}
	return &timeoutClient{next: client, timeout: timeout}
}

func (c *timeoutClient) Generate(ctx context.Context, system, user string, params Params) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.next.Generate(callCtx, system, user, params)
	if err == nil {
		return text, nil
	}

	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", &GenerationError{Op: c.next.Model(), Timeout: true, Cause: err}
	}

	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return "", err
	}
	return "", &GenerationError{Op: c.next.Model(), Cause: err}
}

func (c *timeoutClient) Model() string {
	return c.next.Model()
}

func (c *timeoutClient) Close() error {
	return c.next.Close()
}
