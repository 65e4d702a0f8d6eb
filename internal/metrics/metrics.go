// Package metrics defines Prometheus metrics for errdoctor.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all registered Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	ResolverDuration     *prometheus.HistogramVec
	ResolverTotal        *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec
	CacheAdmissions      *prometheus.CounterVec
	ProviderRequests     *prometheus.CounterVec
	RateLimitedTotal     prometheus.Counter
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ResolverDuration,
		m.ResolverTotal,
		m.ValidationRejections,
		m.CacheAdmissions,
		m.ProviderRequests,
		m.RateLimitedTotal,
	}
}

// Register creates a Metrics instance and registers it with the given registry.
func Register(reg prometheus.Registerer) (*Metrics, error) {
	m := New()
	if err := RegisterWith(reg, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterWith registers a pre-built Metrics instance with the given registry.
func RegisterWith(reg prometheus.Registerer, m *Metrics) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// New creates unregistered metric instances.
func New() *Metrics {
	return &Metrics{
		ResolverDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "errdoctor_resolver_duration_seconds",
				Help:    "Duration of each resolver attempt in seconds.",
				Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"resolver", "outcome"},
		),
		ResolverTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errdoctor_resolver_total",
				Help: "Total number of resolver attempts by resolver and outcome.",
			},
			[]string{"resolver", "outcome"},
		),
		ValidationRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errdoctor_validation_rejections_total",
				Help: "Total number of rejected error descriptions by rule.",
			},
			[]string{"rule"},
		),
		CacheAdmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errdoctor_cache_admissions_total",
				Help: "Cache admission decisions for live diagnoses.",
			},
			[]string{"decision"},
		),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errdoctor_provider_requests_total",
				Help: "Generative provider calls by provider and result.",
			},
			[]string{"provider", "result"},
		),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "errdoctor_rate_limited_total",
			Help: "Total number of live resolutions rejected by the rate limiter.",
		}),
	}
}

// Admission decisions.
const (
	AdmissionStored  = "stored"
	AdmissionSkipped = "skipped"
	AdmissionFailed  = "failed"
)

// RecordRejection counts a validation rejection by rule.
func (m *Metrics) RecordRejection(rule string) {
	if m == nil {
		return
	}
	m.ValidationRejections.WithLabelValues(rule).Inc()
}

// RecordAdmission counts a cache admission decision.
func (m *Metrics) RecordAdmission(decision string) {
	if m == nil {
		return
	}
	m.CacheAdmissions.WithLabelValues(decision).Inc()
}

// RecordProvider counts a provider call.
func (m *Metrics) RecordProvider(provider string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.ProviderRequests.WithLabelValues(provider, result).Inc()
}

// RecordRateLimited counts a rate-limited call.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}
