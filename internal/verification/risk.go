package verification

const (
	// faceBand is the width below the face threshold over which the face
	// component ramps from 0 to 1.
	faceBand = 0.2

	weightFace      = 0.55
	weightLiveness  = 0.20
	weightOCR       = 0.15
	weightSanctions = 0.10
)

// Assess aggregates signals into a decision. Overall is informational: only
// the raw face and liveness scores and the sanctions flag gate Passed.
func Assess(p Policy, s Signals) Assessment {
	a := Assessment{
		FaceComponent:      clamp01((s.FaceMatch - p.FacePassThreshold + faceBand) / faceBand),
		LivenessComponent:  clamp01(s.Liveness),
		OCRComponent:       clamp01(s.OCRConfidence),
		SanctionsComponent: clamp01(1 - s.BestSanctionsScore),
		SanctionsFlag:      s.BestSanctionsScore >= p.SanctionsFlagThreshold,
	}
	a.Overall = weightFace*a.FaceComponent +
		weightLiveness*a.LivenessComponent +
		weightOCR*a.OCRComponent +
		weightSanctions*a.SanctionsComponent

	faceOK := s.FaceMatch >= p.FacePassThreshold
	livenessOK := s.Liveness >= p.LivenessPassThreshold

	switch {
	case a.SanctionsFlag:
		a.Reason = ReasonSanctionsFlag
	case !faceOK:
		a.Reason = ReasonLowFaceMatch
	case !livenessOK:
		a.Reason = ReasonLowLiveness
	default:
		a.Reason = ReasonOK
	}
	a.Passed = a.Reason == ReasonOK
	return a
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
