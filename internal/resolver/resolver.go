// Package resolver turns a validated error description into a diagnostic by trying
// resolution tiers in priority order.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tinkerloft/errdoctor/internal/fingerprint"
	"github.com/tinkerloft/errdoctor/internal/model"
)

// Tier priorities. Lower is tried first.
const (
	PriorityKnowledgeBase = 1
	PriorityCache         = 2
	PriorityLive          = 3
)

// ErrRateLimited is returned when the live tier refuses a call above its ceiling.
var ErrRateLimited = errors.New("rate limit exceeded")

// Request is one description to resolve.
type Request struct {
	Text        string
	Normalized  string
	Fingerprint string
	Profile     model.UserProfile
	// Specificity is the validator score, passed to providers as a confidence hint.
	Specificity float64
}

// NewRequest normalizes text and computes its fingerprint.
func NewRequest(text string, profile model.UserProfile, specificity float64) Request {
	normalized := model.Normalize(text)
	return Request{
		Text:        text,
		Normalized:  normalized,
		Fingerprint: fingerprint.Of(normalized),
		Profile:     profile,
		Specificity: specificity,
	}
}

// Resolver is one resolution strategy. Resolve returns (nil, nil) on a miss; an error
// signals a failure that the chain logs and then treats like a miss.
type Resolver interface {
	Name() string
	Priority() int
	Resolve(ctx context.Context, req Request) (*model.DiagnosticRecord, error)
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
