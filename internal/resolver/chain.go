package resolver

import (
	"context"
	"log/slog"
	"sort"

	"github.com/tinkerloft/errdoctor/internal/fingerprint"
	"github.com/tinkerloft/errdoctor/internal/model"
)

// Chain runs resolvers in priority order and stops at the first hit.
type Chain struct {
	resolvers []Resolver
	logger    *slog.Logger
}

// NewChain sorts resolvers by priority once. Equal priorities keep their given order.
func NewChain(logger *slog.Logger, resolvers ...Resolver) *Chain {
	rs := append([]Resolver{}, resolvers...)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Priority() < rs[j].Priority() })
	return &Chain{resolvers: rs, logger: loggerOr(logger)}
}

// Names returns resolver names in execution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.resolvers))
	for i, r := range c.resolvers {
		names[i] = r.Name()
	}
	return names
}

// Resolve returns the first diagnostic produced. When every resolver misses it returns
// (nil, err) where err is the last resolver failure, or nil if all were plain misses.
func (c *Chain) Resolve(ctx context.Context, req Request) (*model.DiagnosticRecord, error) {
	fp := fingerprint.Short(req.Fingerprint)
	var lastErr error
	for _, r := range c.resolvers {
		d, err := r.Resolve(ctx, req)
		if err != nil {
			c.logger.WarnContext(ctx, "resolver failed", "resolver", r.Name(), "fingerprint", fp, "err", err)
			lastErr = err
			continue
		}
		if d == nil {
			c.logger.DebugContext(ctx, "resolver miss", "resolver", r.Name(), "fingerprint", fp)
			continue
		}
		c.logger.InfoContext(ctx, "resolved", "resolver", r.Name(), "fingerprint", fp,
			"error_type", d.ErrorType, "source", d.Source, "confidence", d.Confidence)
		return d, nil
	}
	return nil, lastErr
}
