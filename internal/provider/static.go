package provider

import (
	"context"
	"fmt"
)

func init() {
	Register("static", func(cfg Config) (Provider, error) { return NewStatic(cfg.Response), nil })
}

// Static returns a fixed response. An empty response always fails, which makes it usable
// as a stand-in for an unreachable provider during development.
type Static struct {
	response string
}

// NewStatic returns a provider answering every prompt with response.
func NewStatic(response string) *Static {
	return &Static{response: response}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Generate(ctx context.Context, _ string, _ ProfileContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.response == "" {
		return "", fmt.Errorf("static: no response configured: %w", ErrUnavailable)
	}
	return s.response, nil
}
