// Package metrics exposes Prometheus collectors for the form runtime.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the runtime's collectors.
type Metrics struct {
	ClickOutcomes  *prometheus.CounterVec
	Submissions    *prometheus.CounterVec
	Shakes         prometheus.Counter
	ActiveSessions prometheus.Gauge
	RPCDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ClickOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "form",
			Name:      "click_outcomes_total",
			Help:      "Submit clicks by form variant and validation outcome.",
		}, []string{"variant", "outcome"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "form",
			Name:      "submissions_total",
			Help:      "Forms forwarded to the register backend, by result.",
		}, []string{"result"}),
		Shakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "form",
			Name:      "shakes_total",
			Help:      "Validation messages shaken.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "form",
			Name:      "sessions_active",
			Help:      "Form sessions held in memory.",
		}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rpc_request_duration_seconds",
			Help:    "RPC handling time by procedure and result code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}

	if reg != nil {
		reg.MustRegister(m.ClickOutcomes, m.Submissions, m.Shakes, m.ActiveSessions, m.RPCDuration)
	}
	return m
}
