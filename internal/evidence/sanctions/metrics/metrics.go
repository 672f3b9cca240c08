// Package metrics provides Prometheus metrics for sanctions screening.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains sanctions screening metrics.
type Metrics struct {
	ScreeningsTotal      *prometheus.CounterVec   // Screenings by final status
	ProviderErrorsTotal  *prometheus.CounterVec   // Provider call failures by category
	RetriesTotal         prometheus.Counter       // Retried provider calls
	CacheHitsTotal       prometheus.Counter       // Screenings answered from cache
	CacheMissesTotal     prometheus.Counter       // Screenings that went to the provider
	CircuitOpenTotal     prometheus.Counter       // Times the breaker opened
	CallDurationSeconds  *prometheus.HistogramVec // Provider call latency by outcome
	BestScoreObservation prometheus.Histogram     // Top match score of screened queries
}

// New creates the metrics, registering them with reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ScreeningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_sanctions_screenings_total",
			Help: "Total number of sanctions screenings by status",
		}, []string{"status"}),

		ProviderErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_sanctions_provider_errors_total",
			Help: "Total number of failed sanctions provider calls by error category",
		}, []string{"category"}),

		RetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kyc_sanctions_retries_total",
			Help: "Total number of retried sanctions provider calls",
		}),

		CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kyc_sanctions_cache_hits_total",
			Help: "Total number of sanctions screenings served from cache",
		}),

		CacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kyc_sanctions_cache_misses_total",
			Help: "Total number of sanctions screenings not found in cache",
		}),

		CircuitOpenTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "kyc_sanctions_circuit_open_total",
			Help: "Total number of times the sanctions provider circuit opened",
		}),

		CallDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_sanctions_call_duration_seconds",
			Help:    "Duration of sanctions provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"outcome"}),

		BestScoreObservation: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kyc_sanctions_best_score",
			Help:    "Top match score of completed sanctions screenings",
			Buckets: []float64{0.1, 0.25, 0.5, 0.7, 0.85, 0.95, 1},
		}),
	}
}

// RecordScreening counts a finished screening.
func (m *Metrics) RecordScreening(status string) {
	if m == nil {
		return
	}
	m.ScreeningsTotal.WithLabelValues(status).Inc()
}

// RecordProviderError counts a failed provider call.
func (m *Metrics) RecordProviderError(category string) {
	if m == nil {
		return
	}
	m.ProviderErrorsTotal.WithLabelValues(category).Inc()
}

// RecordRetry counts a retried provider call.
func (m *Metrics) RecordRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// RecordCacheHit counts a cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss counts a cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// RecordCircuitOpen counts a breaker trip.
func (m *Metrics) RecordCircuitOpen() {
	if m == nil {
		return
	}
	m.CircuitOpenTotal.Inc()
}

// ObserveCall records provider call latency.
func (m *Metrics) ObserveCall(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.CallDurationSeconds.WithLabelValues(outcome).Observe(seconds)
}

// ObserveBestScore records the top score of a completed screening.
func (m *Metrics) ObserveBestScore(score float64) {
	if m == nil {
		return
	}
	m.BestScoreObservation.Observe(score)
}
