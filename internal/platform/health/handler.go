// Package health serves the liveness, readiness and status endpoints.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"kycgate/pkg/platform/httputil"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

const defaultCheckTimeout = 2 * time.Second

// CheckFunc reports a dependency as healthy by returning nil.
type CheckFunc func(ctx context.Context) error

type namedCheck struct {
	name     string
	fn       CheckFunc
	advisory bool
}

type Handler struct {
	started      time.Time
	environment  string
	checkTimeout time.Duration

	mu     sync.RWMutex
	checks []namedCheck
}

func New(environment string) *Handler {
	return &Handler{
		started:      time.Now(),
		environment:  environment,
		checkTimeout: defaultCheckTimeout,
	}
}

// RegisterCheck adds a readiness check, replacing any check with the same name.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.register(namedCheck{name: name, fn: check})
}

// RegisterAdvisory adds a check that is reported by the readiness endpoint but
// never fails it. Use it for dependencies the service degrades around.
func (h *Handler) RegisterAdvisory(name string, check CheckFunc) {
	h.register(namedCheck{name: name, fn: check, advisory: true})
}

func (h *Handler) register(check namedCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = slices.DeleteFunc(h.checks, func(c namedCheck) bool { return c.name == check.name })
	h.checks = append(h.checks, check)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/health", h.HandleAPIHealth)
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleAPIHealth always answers {"status":"ok"}.
func (h *Handler) HandleAPIHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "ok"})
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

// Readiness statuses.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleReadiness runs every check concurrently, each under its own
// deadline. A failing required check answers 503; failing advisory checks
// only mark the status "degraded".
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := slices.Clone(h.checks)
	h.mu.RUnlock()

	results := make([]error, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
			defer cancel()
			results[i] = c.fn(ctx)
			return nil
		})
	}
	_ = g.Wait()

	resp := ReadinessResponse{Status: StatusReady, Checks: make(map[string]string, len(checks))}
	var down, degraded bool
	for i, c := range checks {
		err := results[i]
		switch {
		case err == nil:
			resp.Checks[c.name] = "up"
		case c.advisory:
			degraded = true
			resp.Checks[c.name] = "degraded: " + err.Error()
		default:
			down = true
			resp.Checks[c.name] = "down: " + err.Error()
		}
	}

	status := http.StatusOK
	switch {
	case down:
		resp.Status = StatusNotReady
		status = http.StatusServiceUnavailable
	case degraded:
		resp.Status = StatusDegraded
	}
	httputil.WriteJSON(w, status, resp)
}

type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

// HandleStatus reports build version, environment and uptime.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(now.Sub(h.started).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
	})
}
