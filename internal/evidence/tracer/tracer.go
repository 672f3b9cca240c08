// Package tracer records spans for the verification stages without tying the
// pipeline packages to OpenTelemetry.
package tracer

import (
	"context"
	"time"
)

// Stage names a span opened by one step of the pipeline.
type Stage string

const (
	SpanVerify          Stage = "kyc.verify"
	SpanExtract         Stage = "kyc.document.extract"
	SpanFaceMatch       Stage = "kyc.face.match"
	SpanFaceInit        Stage = "kyc.face.init"
	SpanLiveness        Stage = "kyc.liveness"
	SpanSanctionsScreen Stage = "kyc.sanctions.screen"
	SpanSanctionsCall   Stage = "kyc.sanctions.call"
)

// Attribute keys.
const (
	AttrRequestID    = "request_id"
	AttrNameHash     = "name_hash"
	AttrCacheHit     = "cache.hit"
	AttrAttempt      = "attempt"
	AttrMatchCount   = "sanctions.match_count"
	AttrBestScore    = "sanctions.best_score"
	AttrStatus       = "status"
	AttrSource       = "source"
	AttrFaceMatch    = "face_match"
	AttrLiveness     = "liveness"
	AttrPassed       = "passed"
	AttrReason       = "reason"
	AttrBreakerState = "breaker.state"
)

// Span event names.
const (
	EventAuditEmitted = "audit.emitted"
	EventRetry        = "retry"
)

// Tracer opens spans. Implementations are safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, stage Stage, attrs ...Attribute) (context.Context, Span)
}

// Span is an open stage span.
type Span interface {
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
	// End closes the span and marks it failed when err is non-nil. Call it
	// exactly once.
	End(err error)
}

type kind uint8

const (
	kindString kind = iota + 1
	kindBool
	kindInt
	kindFloat
)

// Attribute is a typed key/value pair attached to a span or event.
type Attribute struct {
	Key  string
	kind kind
	str  string
	num  int64
	flt  float64
}

func String(key, value string) Attribute {
	return Attribute{Key: key, kind: kindString, str: value}
}

func Bool(key string, value bool) Attribute {
	a := Attribute{Key: key, kind: kindBool}
	if value {
		a.num = 1
	}
	return a
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, kind: kindInt, num: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, kind: kindFloat, flt: value}
}

// Duration records d in whole milliseconds.
func Duration(key string, d time.Duration) Attribute {
	return Int64(key, d.Milliseconds())
}

// Value returns the attribute's value, or nil for the zero Attribute.
func (a Attribute) Value() any {
	switch a.kind {
	case kindString:
		return a.str
	case kindBool:
		return a.num == 1
	case kindInt:
		return a.num
	case kindFloat:
		return a.flt
	default:
		return nil
	}
}
