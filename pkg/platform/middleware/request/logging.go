package request

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"kycgate/pkg/platform/privacy"
	"kycgate/pkg/requestcontext"
)

// quietPaths are probe endpoints, logged only when they fail.
var quietPaths = []string{"/health", "/health/live", "/health/ready", "/api/health", "/metrics"}

// Logger writes one record per request. Server errors log at ERROR and
// client errors at WARN. The client address is reduced to its network.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			if rec.status < http.StatusInternalServerError && slices.Contains(quietPaths, r.URL.Path) {
				return
			}

			level := slog.LevelInfo
			switch {
			case rec.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case rec.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			ctx := r.Context()
			logger.Log(ctx, level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestcontext.RequestID(ctx),
				"remote_addr_prefix", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
			)
		})
	}
}
