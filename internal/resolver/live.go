package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tinkerloft/errdoctor/internal/knowledge"
	"github.com/tinkerloft/errdoctor/internal/metrics"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/provider"
)

// Live defaults.
const (
	DefaultProviderTimeout = 10 * time.Second
	DefaultLiveConfidence  = 0.85
)

// Live resolves descriptions by asking generative providers in order.
type Live struct {
	providers         []provider.Provider
	admission         *Admission
	timeout           time.Duration
	defaultConfidence float64
	metrics           *metrics.Metrics
	logger            *slog.Logger
}

// LiveConfig configures a Live resolver.
type LiveConfig struct {
	Timeout           time.Duration
	DefaultConfidence float64
	Metrics           *metrics.Metrics
	Logger            *slog.Logger
}

// NewLive returns a resolver trying providers in order (primary first). Successful
// diagnoses are handed to admission before being returned.
func NewLive(providers []provider.Provider, admission *Admission, cfg LiveConfig) *Live {
	l := &Live{
		providers:         providers,
		admission:         admission,
		timeout:           cfg.Timeout,
		defaultConfidence: cfg.DefaultConfidence,
		metrics:           cfg.Metrics,
		logger:            loggerOr(cfg.Logger),
	}
	if l.timeout <= 0 {
		l.timeout = DefaultProviderTimeout
	}
	if l.defaultConfidence <= 0 || l.defaultConfidence > 1 {
		l.defaultConfidence = DefaultLiveConfidence
	}
	return l
}

func (l *Live) Name() string  { return "live" }
func (l *Live) Priority() int { return PriorityLive }

// Resolve never misses: when every provider fails it returns the unknown diagnostic.
func (l *Live) Resolve(ctx context.Context, req Request) (*model.DiagnosticRecord, error) {
	pc := provider.ProfileContext{Profile: req.Profile, Specificity: req.Specificity}
	prompt := provider.BuildPrompt(req.Text, pc)

	for i, p := range l.providers {
		d, err := l.generate(ctx, p, prompt, pc)
		l.metrics.RecordProvider(p.Name(), err)
		if err != nil {
			l.logger.WarnContext(ctx, "provider failed", "provider", p.Name(), "attempt", i+1, "err", err)
			continue
		}

		src := model.SourceAILiveSecondary
		if i == 0 {
			src = model.SourceAILivePrimary
		}
		rec := finish(d).WithSource(src).Clamp()
		if l.admission != nil {
			l.admission.MaybeStore(ctx, req.Fingerprint, rec, req.Profile)
		}
		return &rec, nil
	}

	l.logger.WarnContext(ctx, "all providers failed", "providers", len(l.providers))
	rec := model.UnknownDiagnostic("")
	if l.admission != nil {
		l.admission.MaybeStore(ctx, req.Fingerprint, rec, req.Profile)
	}
	return &rec, nil
}

func (l *Live) generate(ctx context.Context, p provider.Provider, prompt string, pc provider.ProfileContext) (model.DiagnosticRecord, error) {
	pctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	raw, err := p.Generate(pctx, prompt, pc)
	if err != nil {
		if errors.Is(pctx.Err(), context.DeadlineExceeded) {
			return model.DiagnosticRecord{}, errors.Join(provider.ErrUnavailable, pctx.Err())
		}
		return model.DiagnosticRecord{}, err
	}
	return provider.ParseDiagnostic(raw, l.defaultConfidence)
}

// finish fills the rendered fields a provider does not return.
func finish(d model.DiagnosticRecord) model.DiagnosticRecord {
	if d.VoiceText == "" {
		d.VoiceText = knowledge.VoiceText(d.ErrorType, d.Solutions)
	}
	d.CardTitle = knowledge.CardTitle(d.ErrorType)
	d.CardText = knowledge.CardText(d.ErrorType, d.Solutions, d.Explanation, d.Causes)
	return d
}
