package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/tinkerloft/errdoctor/internal/fingerprint"
	"github.com/tinkerloft/errdoctor/internal/metrics"
	"github.com/tinkerloft/errdoctor/internal/model"
	"github.com/tinkerloft/errdoctor/internal/store"
)

// DefaultCacheTTL is how long an admitted diagnosis stays in the cache.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Admission decides which live diagnoses are persisted to the cache.
type Admission struct {
	store     store.CacheStore
	namespace string
	ttl       time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// AdmissionConfig configures an Admission policy.
type AdmissionConfig struct {
	Namespace string
	TTL       time.Duration
	Now       func() time.Time
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewAdmission returns the admission policy writing to s.
func NewAdmission(s store.CacheStore, cfg AdmissionConfig) *Admission {
	a := &Admission{
		store:     s,
		namespace: cfg.Namespace,
		ttl:       cfg.TTL,
		now:       cfg.Now,
		metrics:   cfg.Metrics,
		logger:    loggerOr(cfg.Logger),
	}
	if a.ttl <= 0 {
		a.ttl = DefaultCacheTTL
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// MaybeStore writes d under fp for profile unless d is a failed diagnosis. Writes
// overwrite any existing entry. Store failures are logged and reported as not stored.
func (a *Admission) MaybeStore(ctx context.Context, fp string, d model.DiagnosticRecord, profile model.UserProfile) bool {
	short := fingerprint.Short(fp)
	if d.IsFailure() {
		a.logger.InfoContext(ctx, "cache admission skipped", "fingerprint", short,
			"confidence", d.Confidence, "source", d.Source)
		a.metrics.RecordAdmission(metrics.AdmissionSkipped)
		return false
	}

	entry := model.CacheEntry{
		Fingerprint: fp,
		Profile:     profile.Snapshot(),
		Diagnostic:  d,
		ExpiresAt:   a.now().Add(a.ttl),
		HitCount:    0,
	}
	if err := a.store.Put(ctx, store.Key(a.namespace, fp), entry, a.ttl); err != nil {
		a.logger.WarnContext(ctx, "cache admission write failed", "fingerprint", short, "err", err)
		a.metrics.RecordAdmission(metrics.AdmissionFailed)
		return false
	}
	a.logger.DebugContext(ctx, "cache admission stored", "fingerprint", short, "expires_at", entry.ExpiresAt)
	a.metrics.RecordAdmission(metrics.AdmissionStored)
	return true
}
