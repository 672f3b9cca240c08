package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycgate/pkg/domain-errors"
)

type sampleConfig struct {
	Addr      string  `env:"KYC_ADDR" validate:"required"`
	Threshold float64 `env:"FACE_PASS_THRESHOLD" validate:"gte=0,lte=1"`
	Engine    string  `env:"FACE_ENGINE" validate:"oneof=remote opencv"`
	Region    string  `json:"region,omitempty" validate:"required"`
	BaseURL   string  `validate:"omitempty,url"`
}

func TestValidate(t *testing.T) {
	valid := sampleConfig{Addr: ":8080", Threshold: 0.35, Engine: "remote", Region: "eu"}

	t.Run("valid struct", func(t *testing.T) {
		assert.NoError(t, Validate(valid))
	})

	tests := []struct {
		name    string
		mutate  func(c *sampleConfig)
		message string
	}{
		{"required uses env key", func(c *sampleConfig) { c.Addr = "" }, "KYC_ADDR is required"},
		{"upper bound", func(c *sampleConfig) { c.Threshold = 1.5 }, "FACE_PASS_THRESHOLD must be at most 1"},
		{"lower bound", func(c *sampleConfig) { c.Threshold = -0.1 }, "FACE_PASS_THRESHOLD must be at least 0"},
		{"oneof", func(c *sampleConfig) { c.Engine = "dlib" }, "FACE_ENGINE must be one of [remote opencv]"},
		{"json name when no env key", func(c *sampleConfig) { c.Region = "" }, "region is required"},
		{"untagged field falls back to snake case", func(c *sampleConfig) { c.BaseURL = "not a url" }, "base_url must be a valid url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}
