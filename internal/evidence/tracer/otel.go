package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "kycgate/evidence"

type otelTracer struct {
	tracer trace.Tracer
}

// NewOTel returns a Tracer backed by provider, or by the global provider
// when provider is nil.
func NewOTel(provider trace.TracerProvider) Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return otelTracer{tracer: provider.Tracer(instrumentationName)}
}

func (t otelTracer) Start(ctx context.Context, stage Stage, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, string(stage),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(keyValues(attrs)...),
	)
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(keyValues(attrs)...)
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(keyValues(attrs)...))
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

// keyValues drops zero Attributes.
func keyValues(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch a.kind {
		case kindString:
			out = append(out, attribute.String(a.Key, a.str))
		case kindBool:
			out = append(out, attribute.Bool(a.Key, a.num == 1))
		case kindInt:
			out = append(out, attribute.Int64(a.Key, a.num))
		case kindFloat:
			out = append(out, attribute.Float64(a.Key, a.flt))
		}
	}
	return out
}
