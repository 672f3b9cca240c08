// Package requesttime pins a single arrival timestamp to each request so the
// audit trail and logs agree on when a verification was received.
package requesttime

import (
	"context"
	"net/http"
	"time"
)

type receivedAtKey struct{}

// Middleware records the arrival time of the request in its context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Now returns the arrival time stored by Middleware, or the current time
// when the context never passed through it (CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(receivedAtKey{}).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}

// WithTime pins t as the arrival time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, receivedAtKey{}, t)
}
