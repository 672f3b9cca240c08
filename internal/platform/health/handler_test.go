package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAPIHealth(t *testing.T) {
	w := get(t, newRouter(New("test")), "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLiveness(t *testing.T) {
	w := get(t, newRouter(New("test")), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Run("all checks up", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return nil })

		w := get(t, newRouter(h), "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","checks":{"redis":"up"}}`, w.Body.String())
	})

	t.Run("failing check returns 503", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return nil })
		h.RegisterCheck("face_engine", func(context.Context) error { return errors.New("connection refused") })

		w := get(t, newRouter(h), "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "down: connection refused", resp.Checks["face_engine"])
		assert.Equal(t, "up", resp.Checks["redis"])
	})

	t.Run("failing advisory check keeps the service ready", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return nil })
		h.RegisterAdvisory("sanctions", func(context.Context) error { return errors.New("circuit breaker open") })

		w := get(t, newRouter(h), "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"redis":"up","sanctions":"degraded: circuit breaker open"}}`, w.Body.String())
	})

	t.Run("required failure wins over advisory failure", func(t *testing.T) {
		h := New("test")
		h.RegisterAdvisory("sanctions", func(context.Context) error { return errors.New("circuit breaker open") })
		h.RegisterCheck("face_engine", func(context.Context) error { return errors.New("face engine not loaded") })

		w := get(t, newRouter(h), "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "degraded: circuit breaker open", resp.Checks["sanctions"])
		assert.Equal(t, "down: face engine not loaded", resp.Checks["face_engine"])
	})

	t.Run("advisory registration replaces a required check", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("sanctions", func(context.Context) error { return errors.New("open") })
		h.RegisterAdvisory("sanctions", func(context.Context) error { return errors.New("open") })

		w := get(t, newRouter(h), "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("re-registering replaces the check", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return errors.New("stale") })
		h.RegisterCheck("redis", func(context.Context) error { return nil })

		w := get(t, newRouter(h), "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","checks":{"redis":"up"}}`, w.Body.String())
	})

	t.Run("slow checks run concurrently", func(t *testing.T) {
		h := New("test")
		for _, name := range []string{"redis", "kafka", "sanctions"} {
			h.RegisterCheck(name, func(context.Context) error {
				time.Sleep(100 * time.Millisecond)
				return nil
			})
		}

		start := time.Now()
		w := get(t, newRouter(h), "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Less(t, time.Since(start), 250*time.Millisecond)
	})

	t.Run("checks receive a deadline", func(t *testing.T) {
		h := New("test")
		var hasDeadline bool
		h.RegisterCheck("kafka", func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		})

		get(t, newRouter(h), "/health/ready")
		assert.True(t, hasDeadline)
	})
}

func TestStatus(t *testing.T) {
	w := get(t, newRouter(New("staging")), "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "staging", resp.Environment)
	assert.Equal(t, Version, resp.Version)
	assert.NotEmpty(t, resp.Timestamp)
}
