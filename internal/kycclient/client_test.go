package kycclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/evidence/sanctions"
	"kycgate/internal/platform/health"
	"kycgate/internal/verification"
	"kycgate/internal/verification/handler"
	"kycgate/pkg/platform/httputil"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/kyc/verify", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		for field, want := range map[string]string{handler.FieldFront: "front", handler.FieldSelfie: "selfie"} {
			f, _, err := r.FormFile(field)
			require.NoError(t, err, field)
			data, _ := io.ReadAll(f)
			assert.Equal(t, want, string(data))
		}
		_, _, err := r.FormFile(handler.FieldBack)
		assert.ErrorIs(t, err, http.ErrMissingFile)
		assert.Equal(t, "Jane Doe", r.FormValue(handler.FieldFullName))
		assert.Empty(t, r.MultipartForm.Value[handler.FieldDOB])

		httputil.WriteJSON(w, http.StatusOK, verification.Result{
			SanctionsMatches: []verification.SanctionsMatch{},
			Passed:           true,
			Reason:           verification.ReasonOK,
			SanctionsStatus:  sanctions.StatusScreened,
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken("tok"))
	result, err := c.Verify(context.Background(), Upload{
		Front:    File{Name: "front.png", Data: []byte("front")},
		Selfie:   File{Name: "selfie.png", Data: []byte("selfie")},
		FullName: "Jane Doe",
	})

	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, sanctions.StatusScreened, result.SanctionsStatus)
}

func TestVerifyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":             "unprocessable",
			"error_description": "Could not detect a face on the selfie image.",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Verify(context.Background(), Upload{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "unprocessable", apiErr.Code)
	assert.Contains(t, err.Error(), "selfie image")
}

func TestReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health/ready":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(health.ReadinessResponse{
				Status: "not_ready",
				Checks: map[string]string{"redis": "down: connection refused", "sanctions": "up"},
			})
		case "/health":
			httputil.WriteJSON(w, http.StatusOK, health.StatusResponse{Status: "healthy", Version: "1.0.0"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	ready, err := c.Readiness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "up", ready.Checks["sanctions"])

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", status.Version)
}

func TestStatusPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Status(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "502 Bad Gateway", err.Error())
}
