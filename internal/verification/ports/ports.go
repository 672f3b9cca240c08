// Package ports declares the capabilities the verification pipeline depends
// on, so the service can be tested without OCR binaries, face models or a
// watchlist provider.
package ports

import (
	"context"
	"image"

	"kycgate/internal/audit"
	"kycgate/internal/evidence/biometric/face"
	"kycgate/internal/evidence/document"
	"kycgate/internal/evidence/sanctions"
)

// DocumentExtractor reads identity fields from document images.
type DocumentExtractor interface {
	Extract(ctx context.Context, front, back image.Image, overrides document.Overrides) (*document.Extraction, error)
}

// FaceMatcher compares the document face with the selfie face.
type FaceMatcher interface {
	Match(ctx context.Context, document, selfie image.Image) (*face.Match, error)
}

// LivenessScorer scores a selfie for liveness in [0, 1].
type LivenessScorer interface {
	Score(ctx context.Context, img image.Image) (float64, error)
}

// SanctionsScreener screens a person against a watchlist. It never fails;
// provider problems are reported through Screening.Status.
type SanctionsScreener interface {
	Screen(ctx context.Context, q sanctions.Query, topK int) sanctions.Screening
}

// AuditPublisher records verification decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
