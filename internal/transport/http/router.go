// Package httptransport assembles the public HTTP surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kycgate/internal/apitoken"
	"kycgate/internal/platform/health"
	"kycgate/internal/verification/handler"
	"kycgate/pkg/platform/middleware/auth"
	"kycgate/pkg/platform/middleware/request"
	"kycgate/pkg/platform/middleware/requesttime"
)

// Deps are the handlers and policies the router mounts.
type Deps struct {
	Health  *health.Handler
	Verify  *handler.Handler
	Metrics *request.Metrics

	// Tokens validates bearer tokens on /api/kyc. Nil leaves the API open.
	Tokens auth.TokenValidator
	// Gatherer backs /metrics; nil serves the default registry.
	Gatherer prometheus.Gatherer

	MaxUploadBytes int64
	RequestTimeout time.Duration

	// TrustProxyHeaders takes the client IP from X-Forwarded-For and
	// X-Real-IP. Leave it off unless a proxy in front overwrites them, or
	// any caller can choose the IP recorded in logs and audit events.
	TrustProxyHeaders bool
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(d Deps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	if d.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(request.ClientMetadata)
	r.Use(request.Tracing(routePattern))
	r.Use(request.Logger(logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(request.LatencyMiddleware(d.Metrics, routePattern))

	if d.Health != nil {
		d.Health.Register(r)
	}

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if d.Verify != nil {
		r.Group(func(r chi.Router) {
			r.Use(request.BodyLimit(d.MaxUploadBytes))
			r.Use(request.ContentType("multipart/form-data"))
			r.Use(auth.RequireBearer(d.Tokens, apitoken.ScopeVerify, logger))
			r.Use(request.Timeout(d.RequestTimeout))
			d.Verify.Register(r)
		})
	}

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
