// Package config loads service configuration from the environment (and an
// optional .env file) into typed, validated structs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	dErrors "kycgate/pkg/domain-errors"
	s "kycgate/pkg/string"
	"kycgate/pkg/validation"
)

// Default model sources. The opencv_zoo repository moved its default branch, so
// both branches are listed and tried in order.
const (
	DefaultYuNetFile = "face_detection_yunet_2023mar.onnx"
	DefaultSFaceFile = "face_recognition_sface_2021dec.onnx"

	DefaultYuNetURLs = "https://github.com/opencv/opencv_zoo/raw/main/models/face_detection_yunet/face_detection_yunet_2023mar.onnx," +
		"https://github.com/opencv/opencv_zoo/raw/master/models/face_detection_yunet/face_detection_yunet_2023mar.onnx"
	DefaultSFaceURLs = "https://github.com/opencv/opencv_zoo/raw/main/models/face_recognition_sface/face_recognition_sface_2021dec.onnx," +
		"https://github.com/opencv/opencv_zoo/raw/master/models/face_recognition_sface/face_recognition_sface_2021dec.onnx"
)

// Config is the full service configuration.
type Config struct {
	Server    Server
	Policy    Policy
	Sanctions Sanctions
	Redis     RedisConfig
	Kafka     Kafka
	Face      Face
	OCR       OCR
	Liveness  Liveness
	Auth      Auth
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string        `env:"KYC_ADDR" validate:"required"`
	Environment    string        `env:"ENVIRONMENT" validate:"required"`
	LogLevel       string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	MaxImagePixels int64         `env:"MAX_IMAGE_PIXELS" validate:"gt=0"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" validate:"gt=0"`

	// TrustProxyHeaders takes the client IP from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS"`
}

// Policy holds the decision thresholds.
type Policy struct {
	FacePassThreshold      float64 `env:"FACE_PASS_THRESHOLD" validate:"gte=0,lte=1"`
	LivenessPassThreshold  float64 `env:"LIVENESS_PASS_THRESHOLD" validate:"gte=0,lte=1"`
	SanctionsFlagThreshold float64 `env:"SANCTIONS_FLAG_THRESHOLD" validate:"gte=0,lte=1"`
}

// Sanctions configures the OpenSanctions screener.
type Sanctions struct {
	APIKey     string        `env:"OPEN_SANCTIONS_API_KEY"`
	BaseURL    string        `env:"OPEN_SANCTIONS_URL" validate:"required,url"`
	TopK       int           `env:"SANCTIONS_TOPK" validate:"gte=1,lte=100"`
	Timeout    time.Duration `env:"SANCTIONS_TIMEOUT" validate:"gt=0"`
	MaxRetries int           `env:"SANCTIONS_MAX_RETRIES" validate:"gte=0,lte=10"`
	CacheTTL   time.Duration `env:"SANCTIONS_CACHE_TTL" validate:"gte=0"`
}

// RedisConfig configures the optional Redis cache backend.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL" validate:"omitempty,url"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" validate:"gte=1"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" validate:"gte=0"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" validate:"gt=0"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" validate:"gt=0"`
}

// Enabled reports whether a Redis URL was configured.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// Kafka configures the audit event sink.
type Kafka struct {
	Brokers    []string `env:"KAFKA_BROKERS"`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" validate:"required"`
	ClientID   string   `env:"KAFKA_CLIENT_ID"`
}

// Enabled reports whether Kafka brokers were configured.
func (c Kafka) Enabled() bool { return len(c.Brokers) > 0 }

// Face configures the face engine and its model assets.
type Face struct {
	Engine    string   `env:"FACE_ENGINE" validate:"oneof=remote opencv"`
	EngineURL string   `env:"FACE_ENGINE_URL" validate:"omitempty,url"`
	ModelsDir string   `env:"MODELS_DIR" validate:"required"`
	YuNetURLs []string `env:"YUNET_URL" validate:"min=1,dive,url"`
	SFaceURLs []string `env:"SFACE_URL" validate:"min=1,dive,url"`
	YuNetFile string   `env:"YUNET_FILE" validate:"required"`
	SFaceFile string   `env:"SFACE_FILE" validate:"required"`
}

// OCR configures document field extraction.
type OCR struct {
	TesseractCmd string `env:"TESSERACT_CMD" validate:"required"`
	DisableMRZ   bool   `env:"KYC_DISABLE_MRZ"`
}

// Liveness configures the liveness scorer.
type Liveness struct {
	MaxSide int `env:"LIVENESS_MAX_SIDE" validate:"gte=0"`
}

// Auth configures optional bearer-token protection of the API.
type Auth struct {
	JWTSecret string        `env:"KYC_JWT_SECRET"`
	TokenTTL  time.Duration `env:"KYC_TOKEN_TTL" validate:"gt=0"`
}

// Enabled reports whether bearer auth is switched on.
func (c Auth) Enabled() bool { return c.JWTSecret != "" }

// Load reads an optional .env file (never overriding real environment
// variables) and builds a validated Config from the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config using lookup so tests can supply their own environment.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	r := &reader{lookup: lookup}

	cfg := &Config{
		Server: Server{
			Addr:           r.string("KYC_ADDR", ":8080"),
			Environment:    r.string("ENVIRONMENT", "development"),
			LogLevel:       strings.ToLower(r.string("LOG_LEVEL", "info")),
			MaxUploadBytes: r.int64("MAX_UPLOAD_BYTES", 20<<20),
			MaxImagePixels: r.int64("MAX_IMAGE_PIXELS", 40_000_000),
			RequestTimeout: r.duration("REQUEST_TIMEOUT", 60*time.Second),

			TrustProxyHeaders: r.bool("TRUST_PROXY_HEADERS", false),
		},
		Policy: Policy{
			FacePassThreshold:      r.float("FACE_PASS_THRESHOLD", 0.35),
			LivenessPassThreshold:  r.float("LIVENESS_PASS_THRESHOLD", 0.35),
			SanctionsFlagThreshold: r.float("SANCTIONS_FLAG_THRESHOLD", 0.85),
		},
		Sanctions: Sanctions{
			APIKey:     r.string("OPEN_SANCTIONS_API_KEY", ""),
			BaseURL:    strings.TrimRight(r.string("OPEN_SANCTIONS_URL", "https://api.opensanctions.org"), "/"),
			TopK:       r.int("SANCTIONS_TOPK", 5),
			Timeout:    r.duration("SANCTIONS_TIMEOUT", 20*time.Second),
			MaxRetries: r.int("SANCTIONS_MAX_RETRIES", 2),
			CacheTTL:   r.duration("SANCTIONS_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          r.string("REDIS_URL", ""),
			PoolSize:     r.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:    s.SplitList(r.string("KAFKA_BROKERS", "")),
			AuditTopic: r.string("KAFKA_AUDIT_TOPIC", "kyc.audit"),
			ClientID:   r.string("KAFKA_CLIENT_ID", "kycgate"),
		},
		Face: Face{
			Engine:    strings.ToLower(r.string("FACE_ENGINE", "remote")),
			EngineURL: r.string("FACE_ENGINE_URL", "http://localhost:8090"),
			ModelsDir: r.string("MODELS_DIR", "models"),
			YuNetURLs: s.SplitList(r.string("YUNET_URL", DefaultYuNetURLs)),
			SFaceURLs: s.SplitList(r.string("SFACE_URL", DefaultSFaceURLs)),
			YuNetFile: r.string("YUNET_FILE", DefaultYuNetFile),
			SFaceFile: r.string("SFACE_FILE", DefaultSFaceFile),
		},
		OCR: OCR{
			TesseractCmd: r.string("TESSERACT_CMD", "tesseract"),
			DisableMRZ:   r.bool("KYC_DISABLE_MRZ", false),
		},
		Liveness: Liveness{
			MaxSide: r.int("LIVENESS_MAX_SIDE", 1024),
		},
		Auth: Auth{
			JWTSecret: r.string("KYC_JWT_SECRET", ""),
			TokenTTL:  r.duration("KYC_TOKEN_TTL", time.Hour),
		},
	}

	if err := errors.Join(r.errs...); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid configuration: "+strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	for _, section := range []any{cfg.Server, cfg.Policy, cfg.Sanctions, cfg.Redis, cfg.Kafka, cfg.Face, cfg.OCR, cfg.Liveness, cfg.Auth} {
		if err := validation.Validate(section); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// ParseBool accepts 1/true/yes/y (and 0/false/no/n/empty), case-insensitively.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "", "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

// reader collects parse errors so every bad key is reported at once.
type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *reader) string(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) int64(key string, def int64) int64 {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (r *reader) bool(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	b, err := ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}
