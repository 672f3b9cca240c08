package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycgate/pkg/domain-errors"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, int64(20<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, int64(40_000_000), cfg.Server.MaxImagePixels)
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.False(t, cfg.Server.TrustProxyHeaders)

	assert.InDelta(t, 0.35, cfg.Policy.FacePassThreshold, 1e-12)
	assert.InDelta(t, 0.35, cfg.Policy.LivenessPassThreshold, 1e-12)
	assert.InDelta(t, 0.85, cfg.Policy.SanctionsFlagThreshold, 1e-12)

	assert.Equal(t, "https://api.opensanctions.org", cfg.Sanctions.BaseURL)
	assert.Equal(t, 5, cfg.Sanctions.TopK)
	assert.Equal(t, 20*time.Second, cfg.Sanctions.Timeout)
	assert.Equal(t, 2, cfg.Sanctions.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Sanctions.CacheTTL)

	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "kyc.audit", cfg.Kafka.AuditTopic)

	assert.Equal(t, "remote", cfg.Face.Engine)
	assert.Len(t, cfg.Face.YuNetURLs, 2)
	assert.Len(t, cfg.Face.SFaceURLs, 2)
	assert.Equal(t, DefaultYuNetFile, cfg.Face.YuNetFile)
	assert.Equal(t, "tesseract", cfg.OCR.TesseractCmd)
	assert.False(t, cfg.OCR.DisableMRZ)
	assert.Equal(t, 1024, cfg.Liveness.MaxSide)
	assert.False(t, cfg.Auth.Enabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"KYC_ADDR":            ":9090",
		"LOG_LEVEL":           "DEBUG",
		"FACE_PASS_THRESHOLD": "0.5",
		"SANCTIONS_TOPK":      "10",
		"OPEN_SANCTIONS_URL":  "http://localhost:8082/",
		"SANCTIONS_CACHE_TTL": "0s",
		"REDIS_URL":           "redis://localhost:6379/0",
		"KAFKA_BROKERS":       "kafka-1:9092, kafka-2:9092",
		"FACE_ENGINE":         "opencv",
		"KYC_DISABLE_MRZ":     "Yes",
		"KYC_JWT_SECRET":      "s3cret",
		"MAX_IMAGE_PIXELS":    "1000000",
		"TRUST_PROXY_HEADERS": "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, int64(1_000_000), cfg.Server.MaxImagePixels)
	assert.True(t, cfg.Server.TrustProxyHeaders)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.InDelta(t, 0.5, cfg.Policy.FacePassThreshold, 1e-12)
	assert.Equal(t, 10, cfg.Sanctions.TopK)
	assert.Equal(t, "http://localhost:8082", cfg.Sanctions.BaseURL)
	assert.Zero(t, cfg.Sanctions.CacheTTL)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "opencv", cfg.Face.Engine)
	assert.True(t, cfg.OCR.DisableMRZ)
	assert.True(t, cfg.Auth.Enabled())
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		message string
	}{
		{"threshold out of range", map[string]string{"FACE_PASS_THRESHOLD": "1.2"}, "FACE_PASS_THRESHOLD must be at most 1"},
		{"unknown engine", map[string]string{"FACE_ENGINE": "dlib"}, "FACE_ENGINE must be one of [remote opencv]"},
		{"zero top k", map[string]string{"SANCTIONS_TOPK": "0"}, "SANCTIONS_TOPK must be at least 1"},
		{"unknown log level", map[string]string{"LOG_LEVEL": "trace"}, "LOG_LEVEL must be one of [debug info warn error]"},
		{"zero pixel cap", map[string]string{"MAX_IMAGE_PIXELS": "0"}, "MAX_IMAGE_PIXELS must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}

	t.Run("unparseable values are all reported", func(t *testing.T) {
		_, err := FromEnv(envMap(map[string]string{
			"SANCTIONS_TIMEOUT": "soon",
			"SANCTIONS_TOPK":    "five",
			"KYC_DISABLE_MRZ":   "maybe",
		}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SANCTIONS_TIMEOUT")
		assert.Contains(t, err.Error(), "SANCTIONS_TOPK")
		assert.Contains(t, err.Error(), "KYC_DISABLE_MRZ")
	})
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "y", " Y "} {
		b, err := ParseBool(v)
		require.NoError(t, err)
		assert.True(t, b, v)
	}
	for _, v := range []string{"", "0", "false", "no", "n"} {
		b, err := ParseBool(v)
		require.NoError(t, err)
		assert.False(t, b, v)
	}
	_, err := ParseBool("sometimes")
	assert.Error(t, err)
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SANCTIONS_TOPK=7\nKYC_ADDR=:7000\n"), 0o600))

	t.Setenv("KYC_ADDR", ":6000")
	t.Cleanup(func() { _ = os.Unsetenv("SANCTIONS_TOPK") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Sanctions.TopK)
	assert.Equal(t, ":6000", cfg.Server.Addr)
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
