package api

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts API calls by resource and outcome.
type Metrics struct {
	calls *prometheus.CounterVec
}

// NewMetrics registers the client counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wheelx",
			Subsystem: "api_client",
			Name:      "calls_total",
			Help:      "Calls to the WheelX API by resource and outcome.",
		}, []string{"resource", "outcome"}),
	}
	reg.MustRegister(m.calls)
	return m
}

func (m *Metrics) observe(resource, outcome string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(resource, outcome).Inc()
}
