// Package provider wraps generative models that diagnose error descriptions.
package provider

import (
	"context"
	"errors"

	"github.com/tinkerloft/errdoctor/internal/model"
)

var (
	// ErrUnavailable is returned when a provider cannot produce a response.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrParse is returned when a response cannot be read as a diagnostic.
	ErrParse = errors.New("unparseable provider response")
)

// ProfileContext is the user context sent along with a prompt.
type ProfileContext struct {
	Profile     model.UserProfile
	Specificity float64
}

// Provider generates text for a prompt. Implementations must honor ctx cancellation.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, pc ProfileContext) (string, error)
}
