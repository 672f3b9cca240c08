package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"kycgate/internal/apitoken"
	"kycgate/internal/audit"
	auditmetrics "kycgate/internal/audit/metrics"
	"kycgate/internal/evidence/biometric/face"
	"kycgate/internal/evidence/biometric/face/opencv"
	"kycgate/internal/evidence/biometric/face/remote"
	"kycgate/internal/evidence/biometric/liveness"
	"kycgate/internal/evidence/document"
	"kycgate/internal/evidence/document/tesseract"
	"kycgate/internal/evidence/sanctions"
	"kycgate/internal/evidence/sanctions/client"
	sanctionsmetrics "kycgate/internal/evidence/sanctions/metrics"
	"kycgate/internal/evidence/tracer"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/health"
	"kycgate/internal/platform/kafka"
	"kycgate/internal/platform/kafka/producer"
	"kycgate/internal/platform/metrics"
	"kycgate/internal/platform/models"
	"kycgate/internal/platform/redis"
	httptransport "kycgate/internal/transport/http"
	"kycgate/internal/verification"
	"kycgate/internal/verification/handler"
	verificationmetrics "kycgate/internal/verification/metrics"
	"kycgate/pkg/platform/circuit"
	"kycgate/pkg/platform/middleware/request"
)

const (
	auditBufferSize  = 1024
	faceWarmInterval = 30 * time.Second
)

// app owns everything that must be released on shutdown.
type app struct {
	deps    httptransport.Deps
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	procMetrics := metrics.New(reg)
	procMetrics.SetBuildInfo(health.Version, cfg.Server.Environment)

	trc := tracer.NewOTel(nil)
	hc := health.New(cfg.Server.Environment)

	// Sanctions: OpenSanctions client behind retries, a breaker and a cache.
	cache, err := buildSanctionsCache(ctx, cfg, reg, log, a, hc)
	if err != nil {
		a.close()
		return nil, err
	}
	procMetrics.SetSanctionsCache(cacheBackend(cfg))

	backoff := sanctions.DefaultBackoff()
	backoff.MaxRetries = cfg.Sanctions.MaxRetries
	sanctionsClient := client.New(client.Config{
		BaseURL: cfg.Sanctions.BaseURL,
		APIKey:  cfg.Sanctions.APIKey,
		Timeout: cfg.Sanctions.Timeout,
	})
	screener := sanctions.NewScreener(sanctionsClient, log,
		sanctions.WithCache(cache),
		sanctions.WithBreaker(circuit.New(client.ProviderID)),
		sanctions.WithBackoff(backoff),
		sanctions.WithMetrics(sanctionsmetrics.New(reg)),
		sanctions.WithTracer(trc),
	)
	// An open breaker degrades screening to "unavailable"; it must not pull
	// the instance out of rotation.
	hc.RegisterAdvisory("sanctions", screener.Health)

	// Document OCR.
	ocr := tesseract.New(cfg.OCR.TesseractCmd)
	hc.RegisterCheck("tesseract", ocr.Health)
	extractor := document.NewExtractor(ocr, log,
		document.WithMRZ(!cfg.OCR.DisableMRZ),
		document.WithExtractorTracer(trc),
	)

	// Face engine, warmed in the background so readiness never waits on a
	// model download.
	engine := face.NewLazy(faceLoader(cfg, log, procMetrics), trc)
	warmCtx, stopWarm := context.WithCancel(ctx)
	warmed := make(chan struct{})
	go func() {
		defer close(warmed)
		_ = engine.Warm(warmCtx, faceWarmInterval)
	}()
	a.closers = append(a.closers, func() {
		stopWarm()
		<-warmed
		if err := engine.Close(); err != nil {
			log.Warn("failed to release face engine", "error", err)
		}
		procMetrics.SetFaceEngineLoaded(false)
	})
	hc.RegisterCheck("face_engine", engine.Ready)

	// Audit trail.
	store, err := buildAuditStore(cfg, log, a, hc)
	if err != nil {
		a.close()
		return nil, err
	}
	procMetrics.SetAuditBackend(auditBackend(cfg))
	auditor := audit.NewPublisher(store,
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(log),
		audit.WithPublisherMetrics(auditmetrics.New(reg)),
	)
	a.closers = append(a.closers, auditor.Close)

	service := verification.New(
		extractor,
		face.NewMatcher(engine, trc),
		liveness.NewScorer(cfg.Liveness.MaxSide, trc),
		screener,
		auditor,
		verification.WithPolicy(verification.Policy{
			FacePassThreshold:      cfg.Policy.FacePassThreshold,
			LivenessPassThreshold:  cfg.Policy.LivenessPassThreshold,
			SanctionsFlagThreshold: cfg.Policy.SanctionsFlagThreshold,
		}),
		verification.WithTopK(cfg.Sanctions.TopK),
		verification.WithMetrics(verificationmetrics.New(reg)),
		verification.WithTracer(trc),
		verification.WithLogger(log),
	)

	a.deps = httptransport.Deps{
		Health:         hc,
		Verify:         handler.New(service, log, handler.WithMaxPixels(cfg.Server.MaxImagePixels)),
		Metrics:        request.NewMetrics(reg),
		Gatherer:       reg,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequestTimeout: cfg.Server.RequestTimeout,

		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	}
	if cfg.Auth.Enabled() {
		a.deps.Tokens = apitoken.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	} else {
		log.Warn("KYC_JWT_SECRET not set; /api/kyc is unauthenticated")
	}
	return a, nil
}

func buildSanctionsCache(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, log *slog.Logger, a *app, hc *health.Handler) (sanctions.Cache, error) {
	if cfg.Sanctions.CacheTTL <= 0 {
		return nil, nil
	}
	if !cfg.Redis.Enabled() {
		return sanctions.NewMemoryCache(cfg.Sanctions.CacheTTL), nil
	}
	rc, err := redis.New(ctx, cfg.Redis, reg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := rc.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	})
	hc.RegisterCheck("redis", rc.Health)
	return sanctions.NewRedisCache(rc, cfg.Sanctions.CacheTTL), nil
}

func buildAuditStore(cfg *config.Config, log *slog.Logger, a *app, hc *health.Handler) (audit.Store, error) {
	if !cfg.Kafka.Enabled() {
		return audit.NewInMemoryStore(0), nil
	}
	pcfg := kafka.DefaultProducerConfig(cfg.Kafka.Brokers)
	pcfg.ClientID = cfg.Kafka.ClientID
	p, err := producer.New(pcfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := p.Close(); err != nil {
			log.Warn("failed to close kafka producer", "error", err)
		}
	})
	hc.RegisterCheck("kafka", p.Healthy)
	return audit.NewKafkaStore(p, cfg.Kafka.AuditTopic), nil
}

func faceLoader(cfg *config.Config, log *slog.Logger, m *metrics.Metrics) face.Loader {
	var load face.Loader
	switch cfg.Face.Engine {
	case "opencv":
		fetcher := models.NewFetcher(
			models.WithHTTPClient(&http.Client{Timeout: 2 * time.Minute}),
			models.WithLogger(log),
		)
		load = opencv.Loader(fetcher, cfg.Face)
	default:
		load = func(ctx context.Context) (face.Engine, error) {
			e := remote.New(cfg.Face.EngineURL, nil)
			if err := e.Health(ctx); err != nil {
				return nil, err
			}
			return e, nil
		}
	}
	return func(ctx context.Context) (face.Engine, error) {
		engine, err := load(ctx)
		if err != nil {
			log.ErrorContext(ctx, "face engine unavailable", "engine", cfg.Face.Engine, "error", err)
			return nil, err
		}
		log.InfoContext(ctx, "face engine loaded", "engine", cfg.Face.Engine)
		m.SetFaceEngineLoaded(true)
		return engine, nil
	}
}

func cacheBackend(cfg *config.Config) string {
	if cfg.Sanctions.CacheTTL <= 0 {
		return "none"
	}
	if cfg.Redis.Enabled() {
		return "redis"
	}
	return "memory"
}

func auditBackend(cfg *config.Config) string {
	if cfg.Kafka.Enabled() {
		return "kafka"
	}
	return "memory"
}
