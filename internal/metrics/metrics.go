// Package metrics exposes the server's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation labels for transition counters
const (
	OpCreate   = "create"
	OpActivate = "activate"
	OpRevoke   = "revoke"
)

// Result labels for transition counters
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics groups the counters on a private registry so several servers can
// coexist in one process.
type Metrics struct {
	registry    *prometheus.Registry
	validations *prometheus.CounterVec
	transitions *prometheus.CounterVec
	expired     prometheus.Counter
}

// New registers the keybox counters plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keybox_validations_total",
			Help: "License validations by response status.",
		}, []string{"status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keybox_transitions_total",
			Help: "License lifecycle operations by outcome.",
		}, []string{"op", "result"}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keybox_expired_total",
			Help: "Licenses moved to EXPIRED by the sweep.",
		}),
	}

	m.registry.MustRegister(
		m.validations,
		m.transitions,
		m.expired,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Validation counts one validation answered with status.
func (m *Metrics) Validation(status string) {
	if m == nil {
		return
	}

	m.validations.WithLabelValues(status).Inc()
}

// Transition counts one lifecycle operation.
func (m *Metrics) Transition(op, result string) {
	if m == nil {
		return
	}

	m.transitions.WithLabelValues(op, result).Inc()
}

// Expired adds n sweep expirations.
func (m *Metrics) Expired(n int64) {
	if m == nil || n <= 0 {
		return
	}

	m.expired.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
