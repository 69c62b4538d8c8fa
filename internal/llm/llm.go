package llm

import (
	"context"
	"errors"
)

// Completer sends one system instruction and one user message to a hosted
// model and returns the first completion text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ErrNotConfigured is returned when no provider is configured.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is used when LLM_PROVIDER is none.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
