package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage names used for the stage latency histogram.
const (
	StageExtract   = "extract"
	StageFaceMatch = "face_match"
	StageLiveness  = "liveness"
	StageSanctions = "sanctions"
)

// Metrics holds Prometheus metrics for the verification pipeline.
type Metrics struct {
	VerificationsTotal *prometheus.CounterVec
	FailuresTotal      *prometheus.CounterVec
	SanctionsStatus    *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	VerifyDuration     prometheus.Histogram
	OverallScore       prometheus.Histogram
	InFlight           prometheus.Gauge
}

// New registers the verification metrics with reg; nil uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		VerificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_verifications_total",
			Help: "Completed verifications by decision and reason",
		}, []string{"passed", "reason"}),
		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_verification_failures_total",
			Help: "Verifications aborted before a decision, by stage and error code",
		}, []string{"stage", "code"}),
		SanctionsStatus: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_verification_sanctions_status_total",
			Help: "Sanctions screening outcome per verification",
		}, []string{"status"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_verification_stage_duration_seconds",
			Help:    "Latency of each pipeline stage",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		VerifyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kyc_verification_duration_seconds",
			Help:    "End to end latency of a verification",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		OverallScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kyc_verification_overall_score",
			Help:    "Distribution of the aggregated overall score",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "kyc_verifications_in_flight",
			Help: "Verifications currently running",
		}),
	}
}

func (m *Metrics) RecordDecision(passed bool, reason string, overall float64) {
	if m == nil {
		return
	}
	label := "false"
	if passed {
		label = "true"
	}
	m.VerificationsTotal.WithLabelValues(label, reason).Inc()
	m.OverallScore.Observe(overall)
}

func (m *Metrics) RecordFailure(stage, code string) {
	if m != nil {
		m.FailuresTotal.WithLabelValues(stage, code).Inc()
	}
}

func (m *Metrics) RecordSanctionsStatus(status string) {
	if m != nil {
		m.SanctionsStatus.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveVerify(d time.Duration) {
	if m != nil {
		m.VerifyDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncInFlight() {
	if m != nil {
		m.InFlight.Inc()
	}
}

func (m *Metrics) DecInFlight() {
	if m != nil {
		m.InFlight.Dec()
	}
}
