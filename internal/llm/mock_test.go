package llm

import "context"

// stubClient is a minimal Client used by decorator tests
type stubClient struct {
	GenerateFunc func(ctx context.Context, system, user string, params Params) (string, error)
	closed       bool
}

func (s *stubClient) Generate(ctx context.Context, system, user string, params Params) (string, error) {
	return s.GenerateFunc(ctx, system, user, params)
}

func (s *stubClient) Model() string { return "stub" }

func (s *stubClient) Close() error {
	s.closed = true
	return nil
}
