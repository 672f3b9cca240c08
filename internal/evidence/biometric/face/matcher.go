package face

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"

	"kycgate/internal/evidence/tracer"
	dErrors "kycgate/pkg/domain-errors"
)

const epsilon = 1e-9

// Match is the result of comparing a document face with a selfie face.
type Match struct {
	Similarity float64
	Document   Detection
	Selfie     Detection
}

// Embedding is a unit-length face feature with the face it came from.
type Embedding struct {
	Vector []float64
	Face   Detection
}

// Matcher compares faces using an Engine.
type Matcher struct {
	engine Engine
	tracer tracer.Tracer
}

// NewMatcher creates a matcher. A nil tracer disables tracing.
func NewMatcher(engine Engine, t tracer.Tracer) *Matcher {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Matcher{engine: engine, tracer: t}
}

// Embed detects the largest face in img and returns its normalised feature.
//
// Errors: ErrNoFace when nothing was detected or the feature is degenerate;
// engine errors are returned wrapped.
func (m *Matcher) Embed(ctx context.Context, img image.Image) (*Embedding, error) {
	faces, err := m.engine.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	best, ok := Largest(faces)
	if !ok {
		return nil, ErrNoFace
	}

	feat, err := m.engine.Embed(ctx, img, best)
	if err != nil {
		return nil, fmt.Errorf("extract face feature: %w", err)
	}

	norm := Norm(feat)
	if norm < epsilon {
		return nil, ErrNoFace
	}
	vec := make([]float64, len(feat))
	for i, v := range feat {
		vec[i] = float64(v) / (norm + epsilon)
	}
	return &Embedding{Vector: vec, Face: best}, nil
}

// Match embeds both images concurrently and returns their cosine similarity.
// The document is checked first, so a missing face on both images reports
// the document.
//
// Errors: CodeUnprocessable naming the image without a face; CodeInternal
// for engine failures.
func (m *Matcher) Match(ctx context.Context, document, selfie image.Image) (*Match, error) {
	ctx, span := m.tracer.Start(ctx, tracer.SpanFaceMatch)

	var (
		g                 errgroup.Group
		docEmb, selfieEmb *Embedding
		docErr, selfieErr error
	)
	g.Go(func() error {
		docEmb, docErr = m.Embed(ctx, document)
		return docErr
	})
	g.Go(func() error {
		selfieEmb, selfieErr = m.Embed(ctx, selfie)
		return selfieErr
	})
	_ = g.Wait()

	if err := classify(docErr, MsgNoFaceDocument, "document"); err != nil {
		span.End(err)
		return nil, err
	}
	if err := classify(selfieErr, MsgNoFaceSelfie, "selfie"); err != nil {
		span.End(err)
		return nil, err
	}

	similarity := Cosine(docEmb.Vector, selfieEmb.Vector)
	span.SetAttributes(tracer.Float64(tracer.AttrFaceMatch, similarity))
	span.End(nil)

	return &Match{Similarity: similarity, Document: docEmb.Face, Selfie: selfieEmb.Face}, nil
}

func classify(err error, noFaceMsg, which string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoFace):
		return dErrors.Wrap(err, dErrors.CodeUnprocessable, noFaceMsg)
	}
	if timeout := dErrors.FromContext(err, "face matching timed out"); timeout != nil {
		return timeout
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "face embedding failed for "+which+" image")
}

// Cosine returns dot(a, b) / (|a||b| + 1e-9). Vectors of different length
// are compared over their common prefix.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + epsilon)
}

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
