// Package verification runs the KYC pipeline: document extraction, face
// match, liveness and sanctions screening, aggregated into one decision.
package verification

import (
	"image"

	"kycgate/internal/evidence/document"
	"kycgate/internal/evidence/sanctions"
)

// Reason explains a decision. Only the highest-priority failure is reported.
type Reason string

const (
	ReasonSanctionsFlag Reason = "sanctions_flag"
	ReasonLowFaceMatch  Reason = "low_face_match"
	ReasonLowLiveness   Reason = "low_liveness"
	ReasonOK            Reason = "ok"
)

// Policy holds the decision thresholds.
type Policy struct {
	FacePassThreshold      float64
	LivenessPassThreshold  float64
	SanctionsFlagThreshold float64
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		FacePassThreshold:      0.35,
		LivenessPassThreshold:  0.35,
		SanctionsFlagThreshold: 0.85,
	}
}

// Signals are the raw pipeline outputs the decision is made from.
type Signals struct {
	FaceMatch          float64
	Liveness           float64
	OCRConfidence      float64
	BestSanctionsScore float64
}

// Assessment is the outcome of Assess.
type Assessment struct {
	FaceComponent      float64
	LivenessComponent  float64
	OCRComponent       float64
	SanctionsComponent float64
	Overall            float64
	SanctionsFlag      bool
	Passed             bool
	Reason             Reason
}

// Request is one verification. DocumentBack is optional; FullName and DOB
// are caller overrides used only when extraction found nothing.
type Request struct {
	DocumentFront image.Image
	DocumentBack  image.Image
	Selfie        image.Image
	FullName      *string
	DOB           *string
}

// ExtractedFields are the identity fields read from the document.
type ExtractedFields struct {
	FullName       *string `json:"full_name"`
	DOB            *string `json:"dob"`
	DocumentNumber *string `json:"document_number"`
	Nationality    *string `json:"nationality"`
	ExpiryDate     *string `json:"expiry_date"`
	Address        *string `json:"address"`
	Source         string  `json:"source"`
}

// Scores reports the raw signals next to the aggregated overall score.
type Scores struct {
	FaceMatch      float64 `json:"face_match"`
	Liveness       float64 `json:"liveness"`
	OCRConfidence  float64 `json:"ocr_confidence"`
	SanctionsMatch float64 `json:"sanctions_match"`
	Overall        float64 `json:"overall"`
}

// SanctionsMatch is one watchlist hit as returned to the caller.
type SanctionsMatch struct {
	ID      *string  `json:"id"`
	Name    *string  `json:"name"`
	Country *string  `json:"country"`
	Dataset *string  `json:"dataset"`
	Schema  *string  `json:"schema"`
	Score   *float64 `json:"score"`
	Link    *string  `json:"link"`
}

// Result is the verification outcome.
type Result struct {
	Extracted        ExtractedFields  `json:"extracted"`
	Scores           Scores           `json:"scores"`
	SanctionsMatches []SanctionsMatch `json:"sanctions_matches"`
	Passed           bool             `json:"passed"`
	Reason           Reason           `json:"reason"`
	SanctionsStatus  sanctions.Status `json:"sanctions_status"`
	RequestID        string           `json:"request_id,omitempty"`
}

func toExtractedFields(f document.Fields) ExtractedFields {
	return ExtractedFields{
		FullName:       f.FullName,
		DOB:            f.DOB,
		DocumentNumber: f.DocumentNumber,
		Nationality:    f.Nationality,
		ExpiryDate:     f.ExpiryDate,
		Address:        f.Address,
		Source:         f.Source,
	}
}

func toSanctionsMatches(matches []sanctions.Match) []SanctionsMatch {
	out := make([]SanctionsMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, SanctionsMatch(m))
	}
	return out
}
