package sanctions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"kycgate/internal/evidence/sanctions/metrics"
	"kycgate/internal/evidence/tracer"
	"kycgate/pkg/platform/circuit"
	"kycgate/pkg/platform/privacy"
	"kycgate/pkg/requestcontext"
)

// Provider queries a watchlist. Results are returned in provider order.
type Provider interface {
	ID() string
	Lookup(ctx context.Context, q Query, size int) ([]Match, error)
}

// BackoffConfig configures retry backoff for retryable provider errors.
type BackoffConfig struct {
	InitialDelay time.Duration // default 100ms
	MaxDelay     time.Duration // default 2s
	MaxRetries   int           // default 2
	Multiplier   float64       // default 2.0
}

// DefaultBackoff returns the default retry policy.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		MaxRetries:   2,
		Multiplier:   2.0,
	}
}

// Screener screens queries against a Provider with retries, a circuit
// breaker, an optional cache and request coalescing.
type Screener struct {
	provider Provider
	cache    Cache
	breaker  *circuit.Breaker
	backoff  BackoffConfig
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	logger   *slog.Logger
	group    singleflight.Group
}

// Option configures a Screener.
type Option func(*Screener)

// WithCache enables caching of successful screenings.
func WithCache(cache Cache) Option {
	return func(s *Screener) { s.cache = cache }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Screener) {
		if b != nil {
			s.breaker = b
		}
	}
}

// WithBackoff overrides the retry policy. Zero fields keep their defaults.
func WithBackoff(cfg BackoffConfig) Option {
	return func(s *Screener) {
		def := DefaultBackoff()
		if cfg.InitialDelay <= 0 {
			cfg.InitialDelay = def.InitialDelay
		}
		if cfg.MaxDelay <= 0 {
			cfg.MaxDelay = def.MaxDelay
		}
		if cfg.Multiplier < 1 {
			cfg.Multiplier = def.Multiplier
		}
		if cfg.MaxRetries < 0 {
			cfg.MaxRetries = 0
		}
		s.backoff = cfg
	}
}

// WithMetrics records screening metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Screener) { s.metrics = m }
}

// WithTracer emits spans for screenings and provider calls.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Screener) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewScreener creates a screener over provider.
func NewScreener(provider Provider, logger *slog.Logger, opts ...Option) *Screener {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Screener{
		provider: provider,
		breaker:  circuit.New("sanctions", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(3)),
		backoff:  DefaultBackoff(),
		tracer:   tracer.NewNoop(),
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Screen screens q and keeps the topK best matches.
//
// An empty name is skipped without calling the provider. Provider failures,
// an open circuit and cancellation all yield Status unavailable with no
// matches; Screen never returns an error.
func (s *Screener) Screen(ctx context.Context, q Query, topK int) Screening {
	q = q.Normalized()
	if q.Name == "" {
		s.metrics.RecordScreening(string(StatusSkipped))
		return Screening{Status: StatusSkipped, Matches: []Match{}}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanSanctionsScreen,
		tracer.String(tracer.AttrNameHash, privacy.Fingerprint(q.Name)),
		tracer.String(tracer.AttrRequestID, requestcontext.RequestID(ctx)),
	)

	key := CacheKey(q, topK)
	if matches, ok := s.fromCache(ctx, key); ok {
		result := Screening{Status: StatusScreened, Matches: matches, CacheHit: true}
		s.finish(span, result, nil)
		return result
	}

	ch := s.group.DoChan(key, func() (any, error) {
		// Shared by every waiter, so it must outlive the caller that started it.
		return s.fetch(context.WithoutCancel(ctx), key, q, topK)
	})

	var (
		matches []Match
		err     error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		err = res.Err
		if err == nil {
			matches = res.Val.([]Match)
		}
	}

	if err != nil {
		s.logger.WarnContext(ctx, "sanctions screening unavailable",
			"error", err,
			"category", string(CategoryOf(err)),
			"breaker_state", s.breaker.State().String(),
			"name_hash", privacy.Fingerprint(q.Name),
			"request_id", requestcontext.RequestID(ctx),
		)
		result := Screening{Status: StatusUnavailable, Matches: []Match{}}
		s.finish(span, result, err)
		return result
	}

	result := Screening{Status: StatusScreened, Matches: matches}
	s.finish(span, result, nil)
	return result
}

func (s *Screener) finish(span tracer.Span, result Screening, err error) {
	span.SetAttributes(
		tracer.String(tracer.AttrStatus, string(result.Status)),
		tracer.Bool(tracer.AttrCacheHit, result.CacheHit),
		tracer.Int64(tracer.AttrMatchCount, int64(len(result.Matches))),
		tracer.Float64(tracer.AttrBestScore, result.BestScore()),
	)
	span.End(err)

	s.metrics.RecordScreening(string(result.Status))
	if result.Status == StatusScreened {
		s.metrics.ObserveBestScore(result.BestScore())
	}
}

func (s *Screener) fromCache(ctx context.Context, key string) ([]Match, bool) {
	if s.cache == nil {
		return nil, false
	}
	matches, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WarnContext(ctx, "sanctions cache read failed", "error", err)
		}
		s.metrics.RecordCacheMiss()
		return nil, false
	}
	s.metrics.RecordCacheHit()
	return matches, true
}

// fetch calls the provider through the breaker, ranks the result and caches it.
func (s *Screener) fetch(ctx context.Context, key string, q Query, topK int) ([]Match, error) {
	if !s.breaker.Allow() {
		return nil, ErrCircuitOpen
	}

	matches, err := s.lookupWithBackoff(ctx, q, topK)
	if err != nil {
		if change := s.breaker.RecordFailure(); change.Opened {
			s.metrics.RecordCircuitOpen()
			s.logger.WarnContext(ctx, "sanctions circuit opened", "provider", s.provider.ID())
		}
		return nil, err
	}
	if change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "sanctions circuit closed", "provider", s.provider.ID())
	}

	ranked := Rank(matches, topK)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, ranked); err != nil {
			s.logger.WarnContext(ctx, "sanctions cache write failed", "error", err)
		}
	}
	return ranked, nil
}

func (s *Screener) lookupWithBackoff(ctx context.Context, q Query, topK int) ([]Match, error) {
	var lastErr error
	delay := s.backoff.InitialDelay

	for attempt := 0; attempt <= s.backoff.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * s.backoff.Multiplier)
			if delay > s.backoff.MaxDelay {
				delay = s.backoff.MaxDelay
			}
			s.metrics.RecordRetry()
		}

		matches, err := s.call(ctx, q, topK, attempt)
		if err == nil {
			return matches, nil
		}

		lastErr = err
		s.metrics.RecordProviderError(string(CategoryOf(err)))
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (s *Screener) call(ctx context.Context, q Query, topK, attempt int) ([]Match, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSanctionsCall,
		tracer.String(tracer.AttrSource, s.provider.ID()),
		tracer.Int64(tracer.AttrAttempt, int64(attempt)),
	)
	start := time.Now()
	matches, err := s.provider.Lookup(ctx, q, topK)
	outcome := "ok"
	if err != nil {
		outcome = string(CategoryOf(err))
	}
	s.metrics.ObserveCall(outcome, time.Since(start).Seconds())
	span.End(err)
	return matches, err
}

// Health reports the breaker as unhealthy while it is open.
func (s *Screener) Health(context.Context) error {
	if s.breaker.State() == circuit.StateOpen {
		return ErrCircuitOpen
	}
	return nil
}
