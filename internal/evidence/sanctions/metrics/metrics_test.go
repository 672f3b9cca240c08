package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordScreening("screened")
	m.RecordScreening("screened")
	m.RecordScreening("unavailable")
	m.RecordProviderError("timeout")
	m.RecordRetry()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCircuitOpen()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScreeningsTotal.WithLabelValues("screened")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScreeningsTotal.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderErrorsTotal.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RetriesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitOpenTotal))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordScreening("skipped")
		m.RecordProviderError("internal")
		m.RecordRetry()
		m.RecordCacheHit()
		m.RecordCacheMiss()
		m.RecordCircuitOpen()
		m.ObserveCall("ok", 0.1)
		m.ObserveBestScore(0.5)
	})
}
