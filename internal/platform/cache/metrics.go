package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache lookups and invalidations. A nil *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewMetrics creates the cache collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shelf",
				Subsystem: "cache",
				Name:      "requests_total",
				Help:      "Cache lookups by result (hit or miss).",
			},
			[]string{"namespace", "result"},
		),
		invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shelf",
				Subsystem: "cache",
				Name:      "invalidated_keys_total",
				Help:      "Keys dropped by namespace invalidation.",
			},
			[]string{"namespace"},
		),
	}
	reg.MustRegister(m.requests, m.invalidations)
	return m
}

func (m *Metrics) Hit(namespace string) {
	if m != nil {
		m.requests.WithLabelValues(namespace, "hit").Inc()
	}
}

func (m *Metrics) Miss(namespace string) {
	if m != nil {
		m.requests.WithLabelValues(namespace, "miss").Inc()
	}
}

func (m *Metrics) Invalidated(namespace string, keys int) {
	if m != nil {
		m.invalidations.WithLabelValues(namespace).Add(float64(keys))
	}
}
