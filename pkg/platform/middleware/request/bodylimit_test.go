package request

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyLimit(t *testing.T) {
	readAll := func(t *testing.T, limit int64, body string) (int, error) {
		t.Helper()
		var readErr error
		var n int
		handler := BodyLimit(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := io.ReadAll(r.Body)
			n, readErr = len(data), err
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/kyc/verify", strings.NewReader(body)))
		return n, readErr
	}

	t.Run("body under limit passes through", func(t *testing.T) {
		n, err := readAll(t, 1024, strings.Repeat("x", 100))
		require.NoError(t, err)
		assert.Equal(t, 100, n)
	})

	t.Run("body at exact limit passes through", func(t *testing.T) {
		n, err := readAll(t, 100, strings.Repeat("x", 100))
		require.NoError(t, err)
		assert.Equal(t, 100, n)
	})

	t.Run("body over limit fails with MaxBytesError", func(t *testing.T) {
		_, err := readAll(t, 100, strings.Repeat("x", 101))
		var tooLarge *http.MaxBytesError
		require.True(t, errors.As(err, &tooLarge))
		assert.Equal(t, int64(100), tooLarge.Limit)
	})

	t.Run("non-positive limit disables the cap", func(t *testing.T) {
		n, err := readAll(t, 0, strings.Repeat("x", 5000))
		require.NoError(t, err)
		assert.Equal(t, 5000, n)
	})
}
