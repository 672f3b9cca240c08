package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetFaceEngineLoaded(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FaceEngineLoaded))
	m.SetFaceEngineLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FaceEngineLoaded))

	m.SetAuditBackend("kafka")
	m.SetSanctionsCache("redis")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditBackend.WithLabelValues("kafka")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SanctionsCache.WithLabelValues("redis")))

	m.SetBuildInfo("1.2.3", "test")
	count, err := testutil.GatherAndCount(reg, "kyc_build_info")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP kyc_face_engine_loaded 1 once the face engine has been loaded, 0 before or after release
# TYPE kyc_face_engine_loaded gauge
kyc_face_engine_loaded 0
`), "kyc_face_engine_loaded")
	assert.NoError(t, err)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SetBuildInfo("dev", "test")
		m.SetFaceEngineLoaded(true)
		m.SetAuditBackend("memory")
		m.SetSanctionsCache("memory")
	})
}
