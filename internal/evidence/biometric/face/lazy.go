package face

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"kycgate/internal/evidence/tracer"
)

// ErrNotLoaded is reported by Ready until the engine has been built.
var ErrNotLoaded = errors.New("face engine not loaded")

// Loader builds an Engine, typically loading model files.
type Loader func(ctx context.Context) (Engine, error)

// Lazy defers engine construction to first use. Concurrent callers wait for
// one load and share its engine; a failed load is not cached, so the next
// call tries again.
type Lazy struct {
	mu     sync.Mutex
	load   Loader
	engine Engine
	tracer tracer.Tracer

	// loaded mirrors engine != nil without taking mu, which is held for
	// the whole of a load.
	loaded atomic.Bool
}

// NewLazy wraps load. A nil tracer disables tracing.
func NewLazy(load Loader, t tracer.Tracer) *Lazy {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Lazy{load: load, tracer: t}
}

// Get returns the engine, loading it if needed.
func (l *Lazy) Get(ctx context.Context) (Engine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine != nil {
		return l.engine, nil
	}

	ctx, span := l.tracer.Start(ctx, tracer.SpanFaceInit)
	engine, err := l.load(ctx)
	span.End(err)
	if err != nil {
		return nil, err
	}
	l.engine = engine
	l.loaded.Store(true)
	return engine, nil
}

// Loaded reports whether the engine has been built. It never blocks on a
// load in progress.
func (l *Lazy) Loaded() bool {
	return l.loaded.Load()
}

// Ready is a readiness check that never triggers a load.
func (l *Lazy) Ready(context.Context) error {
	if !l.Loaded() {
		return ErrNotLoaded
	}
	return nil
}

// Warm loads the engine ahead of the first request, retrying every interval
// until a load succeeds or ctx ends.
func (l *Lazy) Warm(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if _, err := l.Get(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Lazy) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	engine, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Detect(ctx, img)
}

func (l *Lazy) Embed(ctx context.Context, img image.Image, face Detection) ([]float32, error) {
	engine, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Embed(ctx, img, face)
}

// Close releases the engine when it holds resources.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded.Store(false)
	if c, ok := l.engine.(io.Closer); ok {
		l.engine = nil
		return c.Close()
	}
	l.engine = nil
	return nil
}
