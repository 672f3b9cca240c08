package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"kycgate/internal/audit/metrics"
	dErrors "kycgate/pkg/domain-errors"
)

// writeTimeout bounds one background Append.
const writeTimeout = 10 * time.Second

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps events and hands them to a Store, either inline or
// through a bounded buffer drained by one goroutine.
type Publisher struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	queue chan Event
	done  chan struct{}

	// mu guards sends on queue against Close closing it.
	mu     sync.RWMutex
	closed bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events for background writing.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan Event, size)
		}
	}
}

// WithPublisherLogger reports background write failures and drops.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// WithPublisherMetrics instruments the publisher.
func WithPublisherMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records event. Buffered publishers never block on the store; when
// the buffer is full, or the publisher is closed, the event is dropped with
// CodeUnavailable.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if p.queue == nil {
		return p.write(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.metrics.Dropped()
		return dErrors.New(dErrors.CodeUnavailable, "audit publisher closed")
	}
	select {
	case p.queue <- event:
		p.metrics.Queued()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	p.metrics.Dropped()
	p.logger.WarnContext(ctx, "audit buffer full, event dropped",
		"event_type", event.Type,
		"request_id", event.RequestID,
	)
	return dErrors.New(dErrors.CodeUnavailable, "audit buffer full")
}

// Close stops accepting events and waits until the buffer is written.
// It is safe to call more than once.
func (p *Publisher) Close() {
	if p.queue == nil {
		return
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.queue {
		p.metrics.Dequeued()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := p.write(ctx, event); err != nil {
			p.logger.Error("audit event not persisted",
				"error", err,
				"event_type", event.Type,
				"request_id", event.RequestID,
			)
		}
		cancel()
	}
}

func (p *Publisher) write(ctx context.Context, event Event) error {
	start := time.Now()
	err := p.store.Append(ctx, event)
	p.metrics.Appended(time.Since(start), err)
	return err
}
