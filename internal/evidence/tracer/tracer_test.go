package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordingSpan struct {
	noop.Span
	attrs  []attribute.KeyValue
	events []string
	errs   []error
	status codes.Code
	ended  int
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) { s.attrs = append(s.attrs, kv...) }

func (s *recordingSpan) AddEvent(name string, _ ...trace.EventOption) {
	s.events = append(s.events, name)
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }
func (s *recordingSpan) SetStatus(code codes.Code, _ string)           { s.status = code }
func (s *recordingSpan) End(...trace.SpanEndOption)                    { s.ended++ }

type recordingTracer struct {
	noop.Tracer
	span   *recordingSpan
	name   string
	config trace.SpanConfig
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	t.name = name
	t.config = trace.NewSpanStartConfig(opts...)
	return trace.ContextWithSpan(ctx, t.span), t.span
}

func TestOTelSpanLifecycle(t *testing.T) {
	rec := &recordingTracer{span: &recordingSpan{}}
	tr := otelTracer{tracer: rec}

	ctx, span := tr.Start(context.Background(), SpanSanctionsScreen,
		String(AttrNameHash, "ab12"),
		Bool(AttrCacheHit, false),
	)
	span.SetAttributes(Int64(AttrMatchCount, 2), Float64(AttrBestScore, 0.91), Attribute{Key: "zero"})
	span.AddEvent(EventRetry, Int64(AttrAttempt, 1))
	span.End(errors.New("provider unavailable"))

	assert.Equal(t, "kyc.sanctions.screen", rec.name)
	assert.Equal(t, trace.SpanKindInternal, rec.config.SpanKind())
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String(AttrNameHash, "ab12"),
		attribute.Bool(AttrCacheHit, false),
	}, rec.config.Attributes())
	assert.Equal(t, []attribute.KeyValue{
		attribute.Int64(AttrMatchCount, 2),
		attribute.Float64(AttrBestScore, 0.91),
	}, rec.span.attrs)
	assert.Equal(t, []string{EventRetry}, rec.span.events)
	require.Len(t, rec.span.errs, 1)
	assert.Equal(t, codes.Error, rec.span.status)
	assert.Equal(t, 1, rec.span.ended)
	assert.Same(t, rec.span, trace.SpanFromContext(ctx))
}

func TestOTelSpanSuccessLeavesStatusUnset(t *testing.T) {
	rec := &recordingTracer{span: &recordingSpan{}}
	_, span := otelTracer{tracer: rec}.Start(context.Background(), SpanLiveness)
	span.End(nil)

	assert.Empty(t, rec.span.errs)
	assert.Equal(t, codes.Unset, rec.span.status)
	assert.Equal(t, 1, rec.span.ended)
}

func TestNewOTelProviders(t *testing.T) {
	for _, provider := range []trace.TracerProvider{nil, noop.NewTracerProvider()} {
		_, span := NewOTel(provider).Start(context.Background(), SpanVerify)
		span.End(nil)
	}
}

func TestNoopKeepsContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), struct{}{}, "v")

	got, span := NewNoop().Start(ctx, SpanFaceMatch, String(AttrRequestID, "req-1"))
	span.SetAttributes(Bool(AttrPassed, true))
	span.AddEvent(EventAuditEmitted)
	span.End(errors.New("ignored"))

	assert.Equal(t, ctx, got)
}

func TestAttributeValues(t *testing.T) {
	assert.Equal(t, "ok", String(AttrReason, "ok").Value())
	assert.Equal(t, true, Bool(AttrPassed, true).Value())
	assert.Equal(t, false, Bool(AttrPassed, false).Value())
	assert.Equal(t, int64(3), Int64(AttrAttempt, 3).Value())
	assert.Equal(t, 0.87, Float64(AttrFaceMatch, 0.87).Value())
	assert.Equal(t, int64(150), Duration("latency_ms", 150*time.Millisecond).Value())
	assert.Nil(t, Attribute{Key: "zero"}.Value())
}
