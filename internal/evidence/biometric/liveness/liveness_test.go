package liveness

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/pkg/testutil"
)

func TestSolidImageHasNoSharpness(t *testing.T) {
	img := testutil.Solid(40, 30, color.Gray{Y: 128})
	pix := grayPix(img)

	assert.Zero(t, Sharpness(pix, 40, 30))
	assert.Zero(t, Saturation(img))
	// All energy sits at DC, inside the central window.
	assert.InDelta(t, 0.0, MoirePenalty(pix, 40, 30), 1e-9)
	assert.Zero(t, Score(img))
}

func TestCheckerboardIsSharp(t *testing.T) {
	img := testutil.Checkerboard(64, 64, 1)
	pix := grayPix(img)

	assert.Equal(t, 1.0, Sharpness(pix, 64, 64))
	assert.Greater(t, MoirePenalty(pix, 64, 64), 0.5)
}

func TestSaturatedColourRaisesScore(t *testing.T) {
	red := testutil.Solid(20, 20, color.RGBA{R: 255, A: 255})

	assert.InDelta(t, 1.0, Saturation(red), 1e-9)
	assert.InDelta(t, 0.3, Score(red), 1e-6)
}

func TestScoreStaysInRange(t *testing.T) {
	for _, img := range []image.Image{
		testutil.Gradient(50, 37),
		testutil.Checkerboard(33, 17, 3),
		testutil.Solid(1, 1, color.White),
	} {
		s := Score(img)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestEmptyImage(t *testing.T) {
	assert.Zero(t, Score(image.NewRGBA(image.Rect(0, 0, 0, 0))))
}

func TestReflect101(t *testing.T) {
	assert.Equal(t, 1, reflect101(-1, 5))
	assert.Equal(t, 3, reflect101(5, 5))
	assert.Equal(t, 0, reflect101(-1, 1))
	assert.Equal(t, 0, reflect101(2, 2))
}

func TestFFTMatchesDirectDFT(t *testing.T) {
	pix := []float64{1, 2, 3, 4, 5, 6}
	got := fft2(pix, 3, 2)

	// DC term is the sum of all samples.
	assert.InDelta(t, 21.0, real(got[0]), 1e-9)
	// Vertical frequency 1, horizontal 0: difference of the row sums.
	assert.InDelta(t, 6.0-15.0, real(got[3]), 1e-9)
	assert.InDelta(t, 0.0, imag(got[3]), 1e-9)
}

func TestScorerDownscalesAndHonoursContext(t *testing.T) {
	scorer := NewScorer(16, nil)
	img := testutil.Checkerboard(64, 64, 8)

	score, err := scorer.Score(context.Background(), img)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = scorer.Score(ctx, img)
	assert.ErrorIs(t, err, context.Canceled)
}

func grayPix(img image.Image) []float64 {
	b := img.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, float64(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y))
		}
	}
	return out
}
