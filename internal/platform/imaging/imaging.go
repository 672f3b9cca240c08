// Package imaging decodes uploaded images and provides the small set of pixel
// operations the evidence pipeline needs (grayscale, resize, threshold, crop).
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

var (
	// ErrEmpty is returned when the upload has no bytes.
	ErrEmpty = errors.New("empty image")
	// ErrTooLarge is returned when the declared dimensions exceed the pixel cap.
	ErrTooLarge = errors.New("image too large")
)

// Decode decodes JPEG, PNG, GIF, BMP, TIFF or WebP bytes.
// It returns the image and its format name. The header is read first and
// images declaring more than maxPixels pixels are rejected before any pixel
// buffer is allocated. A maxPixels of zero or less disables the cap.
func Decode(data []byte, maxPixels int64) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmpty
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", ErrEmpty
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", ErrEmpty
	}
	return img, format, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Luma returns BT.601 luminance (0.299R + 0.587G + 0.114B) on a 0..255 scale,
// row-major, together with the width and height.
func Luma(img image.Image) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
		}
	}
	return out, w, h
}

// ToGray converts img to 8-bit grayscale with the same weights as Luma.
func ToGray(img image.Image) *image.Gray {
	luma, w, h := Luma(img)
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range luma {
		gray.Pix[i] = clampByte(v + 0.5)
	}
	return gray
}

// Resize scales img so that its longest side is at most maxSide, keeping the
// aspect ratio. Images already within bounds (or maxSide <= 0) are returned as is.
func Resize(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if maxSide <= 0 || longest <= maxSide {
		return img
	}
	scale := float64(maxSide) / float64(longest)
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// AdaptiveThreshold binarises gray with a mean threshold over a block×block
// neighbourhood: a pixel becomes white when it exceeds the local mean minus c.
// Neighbourhoods are clipped at the image border.
func AdaptiveThreshold(gray *image.Gray, block int, c float64) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	radius := block / 2

	// Integral image with a zero row and column.
	stride := w + 1
	integral := make([]float64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum float64
		for x := 0; x < w; x++ {
			rowSum += float64(gray.Pix[y*gray.Stride+x])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-radius), min(h, y+radius+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-radius), min(w, x+radius+1)
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] - integral[y1*stride+x0] + integral[y0*stride+x0]
			mean := sum / float64((y1-y0)*(x1-x0))
			if float64(gray.Pix[y*gray.Stride+x]) > mean-c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// CropBottom returns the bottom fraction (0..1] of img as a new image.
func CropBottom(img image.Image, fraction float64) image.Image {
	b := img.Bounds()
	if fraction <= 0 || fraction >= 1 {
		return img
	}
	top := b.Max.Y - int(float64(b.Dy())*fraction+0.5)
	rect := image.Rect(b.Min.X, top, b.Max.X, b.Max.Y)
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

// HSVSaturation returns S in HSV space on a 0..255 scale: 255·(max−min)/max,
// or 0 for black.
func HSVSaturation(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	rf, gf, bf := float64(r>>8), float64(g>>8), float64(b>>8)
	hi := max(rf, gf, bf)
	if hi == 0 {
		return 0
	}
	lo := min(rf, gf, bf)
	return 255 * (hi - lo) / hi
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
