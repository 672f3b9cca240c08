// Package liveness scores how likely a selfie is a live capture rather than
// a photo of a screen or print.
//
// The score is a heuristic over image statistics (focus, colour saturation
// and moire energy). It catches lazy replays of low quality photos; it is not
// a defence against a determined attacker.
package liveness

import (
	"context"
	"image"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"kycgate/internal/evidence/tracer"
	"kycgate/internal/platform/imaging"
)

// DefaultMaxSide is the longest side images are reduced to before scoring.
const DefaultMaxSide = 1024

const (
	sharpnessScale = 150.0
	centralHalf    = 15
	penaltyGain    = 1.5
	spectrumEps    = 1e-6

	weightSharpness  = 0.6
	weightSaturation = 0.3
	weightPenalty    = 0.3
)

// Score returns the liveness score of img in [0, 1].
func Score(img image.Image) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	gray := imaging.ToGray(img)
	pix := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = float64(gray.Pix[y*gray.Stride+x])
		}
	}

	sharp := Sharpness(pix, w, h)
	sat := Saturation(img)
	penalty := MoirePenalty(pix, w, h)

	return clamp01(weightSharpness*sharp + weightSaturation*sat - weightPenalty*penalty)
}

// Sharpness is the variance of the 4-neighbour Laplacian over 150, capped at 1.
// Borders are mirrored without repeating the edge pixel.
func Sharpness(pix []float64, w, h int) float64 {
	n := float64(w * h)
	var sum, sumSq float64
	for y := 0; y < h; y++ {
		up, down := reflect101(y-1, h), reflect101(y+1, h)
		for x := 0; x < w; x++ {
			left, right := reflect101(x-1, w), reflect101(x+1, w)
			lap := pix[up*w+x] + pix[down*w+x] + pix[y*w+left] + pix[y*w+right] - 4*pix[y*w+x]
			sum += lap
			sumSq += lap * lap
		}
	}
	mean := sum / n
	variance := max(0, sumSq/n-mean*mean)
	return math.Min(1, variance/sharpnessScale)
}

// Saturation is the mean HSV saturation of img on a 0..1 scale.
func Saturation(img image.Image) float64 {
	b := img.Bounds()
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += math.Round(imaging.HSVSaturation(img.At(x, y)))
		}
	}
	return sum / float64(b.Dx()*b.Dy()) / 255
}

// MoirePenalty measures how much spectral energy lies outside the 30x30
// window around DC of the centred 2-D spectrum. Screens and prints push
// energy into high frequencies.
func MoirePenalty(pix []float64, w, h int) float64 {
	spectrum := fft2(pix, w, h)

	var total float64
	for _, c := range spectrum {
		total += cmplx.Abs(c)
	}

	// Window bounds are in shifted coordinates; shifted index k holds
	// frequency (k - n/2) mod n.
	cy, cx := h/2, w/2
	y0, y1 := max(0, cy-centralHalf), min(h, cy+centralHalf)
	x0, x1 := max(0, cx-centralHalf), min(w, cx+centralHalf)
	var central float64
	for sy := y0; sy < y1; sy++ {
		oy := (sy - h/2 + h) % h
		for sx := x0; sx < x1; sx++ {
			ox := (sx - w/2 + w) % w
			central += cmplx.Abs(spectrum[oy*w+ox])
		}
	}

	ratio := (central + spectrumEps) / (total + spectrumEps)
	return math.Min(1, penaltyGain*(1-ratio))
}

// fft2 returns the unnormalised 2-D DFT of a row-major real image.
func fft2(pix []float64, w, h int) []complex128 {
	out := make([]complex128, w*h)
	for i, v := range pix {
		out[i] = complex(v, 0)
	}

	// A length-1 transform is the identity.
	if w > 1 {
		rows := fourier.NewCmplxFFT(w)
		buf := make([]complex128, w)
		for y := 0; y < h; y++ {
			row := out[y*w : (y+1)*w]
			rows.Coefficients(buf, row)
			copy(row, buf)
		}
	}
	if h > 1 {
		cols := fourier.NewCmplxFFT(h)
		col := make([]complex128, h)
		coef := make([]complex128, h)
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = out[y*w+x]
			}
			cols.Coefficients(coef, col)
			for y := 0; y < h; y++ {
				out[y*w+x] = coef[y]
			}
		}
	}
	return out
}

// reflect101 mirrors i into [0, n) without repeating the border pixel
// (-1 maps to 1, n maps to n-2).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*(n-1) - i
		}
	}
	return i
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Scorer scores selfies, downscaling large images first.
type Scorer struct {
	maxSide int
	tracer  tracer.Tracer
}

// NewScorer creates a scorer. maxSide <= 0 disables downscaling; a nil
// tracer disables tracing.
func NewScorer(maxSide int, t tracer.Tracer) *Scorer {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Scorer{maxSide: maxSide, tracer: t}
}

// Score returns the liveness score of img.
func (s *Scorer) Score(ctx context.Context, img image.Image) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, span := s.tracer.Start(ctx, tracer.SpanLiveness)
	score := Score(imaging.Resize(img, s.maxSide))
	span.SetAttributes(tracer.Float64(tracer.AttrLiveness, score))
	span.End(nil)
	return score, nil
}
