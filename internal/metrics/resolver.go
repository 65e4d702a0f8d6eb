package metrics

import "time"

// Resolver outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Outcome classifies a resolver attempt.
func Outcome(hit bool, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case hit:
		return OutcomeHit
	default:
		return OutcomeMiss
	}
}

// ObserveResolver records duration and outcome of one resolver attempt that began at start.
func (m *Metrics) ObserveResolver(name string, start time.Time, hit bool, err error) {
	if m == nil {
		return
	}
	duration := time.Since(start).Seconds()
	outcome := Outcome(hit, err)
	m.ResolverDuration.WithLabelValues(name, outcome).Observe(duration)
	m.ResolverTotal.WithLabelValues(name, outcome).Inc()
}
