package resolver

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/tinkerloft/errdoctor/internal/metrics"
	"github.com/tinkerloft/errdoctor/internal/model"
)

// RateLimited rejects calls above a per-minute ceiling with ErrRateLimited instead of
// invoking the wrapped resolver.
type RateLimited struct {
	next    Resolver
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// WithRateLimit wraps next with a ceiling of perMinute calls, allowing bursts of the same
// size. A non-positive perMinute returns next unchanged.
func WithRateLimit(next Resolver, perMinute int, m *metrics.Metrics, logger *slog.Logger) Resolver {
	if perMinute <= 0 {
		return next
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		metrics: m,
		logger:  loggerOr(logger),
	}
}

func (r *RateLimited) Name() string  { return r.next.Name() }
func (r *RateLimited) Priority() int { return r.next.Priority() }

func (r *RateLimited) Resolve(ctx context.Context, req Request) (*model.DiagnosticRecord, error) {
	if !r.limiter.Allow() {
		r.metrics.RecordRateLimited()
		r.logger.WarnContext(ctx, "rate limit exceeded", "resolver", r.next.Name())
		return nil, ErrRateLimited
	}
	return r.next.Resolve(ctx, req)
}

// Instrumented records duration and outcome of every call to the wrapped resolver.
type Instrumented struct {
	next    Resolver
	metrics *metrics.Metrics
}

// WithMetrics wraps next with metrics recording. A nil m returns next unchanged.
func WithMetrics(next Resolver, m *metrics.Metrics) Resolver {
	if m == nil {
		return next
	}
	return &Instrumented{next: next, metrics: m}
}

func (i *Instrumented) Name() string  { return i.next.Name() }
func (i *Instrumented) Priority() int { return i.next.Priority() }

func (i *Instrumented) Resolve(ctx context.Context, req Request) (*model.DiagnosticRecord, error) {
	start := time.Now()
	d, err := i.next.Resolve(ctx, req)
	i.metrics.ObserveResolver(i.next.Name(), start, d != nil, err)
	return d, err
}
