// Package metrics holds process-level Prometheus metrics.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-level metrics for the service.
type Metrics struct {
	BuildInfo        *prometheus.GaugeVec
	FaceEngineLoaded prometheus.Gauge
	AuditBackend     *prometheus.GaugeVec
	SanctionsCache   *prometheus.GaugeVec
}

// New creates and registers process metrics with reg, or the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		BuildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kyc_build_info",
			Help: "Build information; the value is always 1",
		}, []string{"version", "environment", "go_version"}),
		FaceEngineLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "kyc_face_engine_loaded",
			Help: "1 once the face engine has been loaded, 0 before or after release",
		}),
		AuditBackend: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kyc_audit_backend_info",
			Help: "Configured audit store; the value is always 1",
		}, []string{"backend"}),
		SanctionsCache: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kyc_sanctions_cache_info",
			Help: "Configured sanctions result cache; the value is always 1",
		}, []string{"backend"}),
	}
}

// SetBuildInfo publishes the running version.
func (m *Metrics) SetBuildInfo(version, environment string) {
	if m == nil {
		return
	}
	m.BuildInfo.WithLabelValues(version, environment, runtime.Version()).Set(1)
}

// SetFaceEngineLoaded records whether the face engine is resident.
func (m *Metrics) SetFaceEngineLoaded(loaded bool) {
	if m == nil {
		return
	}
	if loaded {
		m.FaceEngineLoaded.Set(1)
		return
	}
	m.FaceEngineLoaded.Set(0)
}

// SetAuditBackend records the audit store in use.
func (m *Metrics) SetAuditBackend(backend string) {
	if m == nil {
		return
	}
	m.AuditBackend.WithLabelValues(backend).Set(1)
}

// SetSanctionsCache records the sanctions cache in use.
func (m *Metrics) SetSanctionsCache(backend string) {
	if m == nil {
		return
	}
	m.SanctionsCache.WithLabelValues(backend).Set(1)
}
