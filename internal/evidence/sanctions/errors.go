package sanctions

import (
	"errors"
	"fmt"
)

// ErrorCategory groups watchlist provider failures for retry and metrics.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"
	ErrorAuthentication ErrorCategory = "authentication"
	ErrorOutage         ErrorCategory = "provider_outage"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorInternal       ErrorCategory = "internal"
)

// Retryable reports whether a later attempt can succeed.
func (c ErrorCategory) Retryable() bool {
	switch c {
	case ErrorTimeout, ErrorOutage, ErrorRateLimited:
		return true
	}
	return false
}

var (
	// ErrCircuitOpen is returned while the provider circuit breaker is open.
	ErrCircuitOpen = errors.New("sanctions provider circuit open")
	// ErrCacheMiss is returned by caches when no fresh entry exists.
	ErrCacheMiss = errors.New("sanctions cache miss")
)

// ProviderError is a categorised failure from a watchlist provider.
type ProviderError struct {
	Category ErrorCategory
	Provider string
	Msg      string
	Err      error
}

// NewProviderError builds a ProviderError; cause may be nil.
func NewProviderError(category ErrorCategory, provider, msg string, cause error) *ProviderError {
	return &ProviderError{Category: category, Provider: provider, Msg: msg, Err: cause}
}

func (e *ProviderError) Error() string {
	s := fmt.Sprintf("%s: %s (%s)", e.Provider, e.Msg, e.Category)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a provider error in a retryable category.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category.Retryable()
	}
	return false
}

// CategoryOf returns the category of a provider error, or ErrorInternal.
func CategoryOf(err error) ErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}
