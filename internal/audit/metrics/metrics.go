package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event outcomes.
const (
	OutcomeEnqueued  = "enqueued"
	OutcomeDropped   = "dropped"
	OutcomePersisted = "persisted"
	OutcomeFailed    = "failed"
)

// Metrics instruments the audit publisher.
type Metrics struct {
	Events     *prometheus.CounterVec // by outcome
	Backlog    prometheus.Gauge
	AppendTime prometheus.Histogram
}

// New registers the audit metrics with reg; nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_audit_events_total",
			Help: "Audit events by publisher outcome",
		}, []string{"outcome"}),
		Backlog: f.NewGauge(prometheus.GaugeOpts{
			Name: "kyc_audit_backlog",
			Help: "Audit events waiting to be written",
		}),
		AppendTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kyc_audit_append_duration_seconds",
			Help:    "Latency of a single audit store append",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
}

// Count returns the counter for outcome, for tests and dashboards.
func (m *Metrics) Count(outcome string) prometheus.Counter {
	return m.Events.WithLabelValues(outcome)
}

// Queued records an event entering the buffer.
func (m *Metrics) Queued() {
	if m == nil {
		return
	}
	m.Count(OutcomeEnqueued).Inc()
	m.Backlog.Inc()
}

// Dequeued records an event leaving the buffer.
func (m *Metrics) Dequeued() {
	if m != nil {
		m.Backlog.Dec()
	}
}

// Dropped records an event rejected by a full buffer.
func (m *Metrics) Dropped() {
	if m != nil {
		m.Count(OutcomeDropped).Inc()
	}
}

// Appended records one store write and its result.
func (m *Metrics) Appended(took time.Duration, err error) {
	if m == nil {
		return
	}
	m.AppendTime.Observe(took.Seconds())
	if err != nil {
		m.Count(OutcomeFailed).Inc()
		return
	}
	m.Count(OutcomePersisted).Inc()
}
