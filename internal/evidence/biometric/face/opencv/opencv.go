//go:build gocv

// Package opencv implements a local face engine with OpenCV's YuNet detector
// and SFace recogniser.
package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"kycgate/internal/evidence/biometric/face"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/models"
)

const (
	scoreThreshold = 0.6
	nmsThreshold   = 0.3
	topK           = 5000
)

// Engine runs YuNet and SFace. OpenCV objects are not safe for concurrent
// use, so calls are serialised.
type Engine struct {
	mu         sync.Mutex
	detector   gocv.FaceDetectorYN
	recognizer gocv.FaceRecognizerSF
}

// New loads the models at the given paths.
func New(yunetPath, sfacePath string) (*Engine, error) {
	detector := gocv.NewFaceDetectorYNWithParams(yunetPath, "", image.Pt(320, 320),
		scoreThreshold, nmsThreshold, topK, 0, 0)
	recognizer := gocv.NewFaceRecognizerSF(sfacePath, "")
	return &Engine{detector: detector, recognizer: recognizer}, nil
}

// Loader resolves both model files through fetcher and builds the engine.
func Loader(fetcher *models.Fetcher, cfg config.Face) face.Loader {
	return func(ctx context.Context) (face.Engine, error) {
		yunet, err := fetcher.Ensure(ctx, cfg.ModelsDir, cfg.YuNetFile, cfg.YuNetURLs...)
		if err != nil {
			return nil, fmt.Errorf("resolve yunet model: %w", err)
		}
		sface, err := fetcher.Ensure(ctx, cfg.ModelsDir, cfg.SFaceFile, cfg.SFaceURLs...)
		if err != nil {
			return nil, fmt.Errorf("resolve sface model: %w", err)
		}
		return New(yunet, sface)
	}
}

// Detect runs YuNet on img at its native size.
func (e *Engine) Detect(_ context.Context, img image.Image) ([]face.Detection, error) {
	mat, err := toBGR(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	faces := gocv.NewMat()
	defer faces.Close()

	e.mu.Lock()
	e.detector.SetInputSize(image.Pt(mat.Cols(), mat.Rows()))
	e.detector.Detect(mat, &faces)
	e.mu.Unlock()

	out := make([]face.Detection, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		d := face.Detection{
			X:     faces.GetFloatAt(r, 0),
			Y:     faces.GetFloatAt(r, 1),
			W:     faces.GetFloatAt(r, 2),
			H:     faces.GetFloatAt(r, 3),
			Score: faces.GetFloatAt(r, 14),
		}
		for i := range d.Landmarks {
			d.Landmarks[i] = faces.GetFloatAt(r, 4+i)
		}
		out = append(out, d)
	}
	return out, nil
}

// Embed aligns the face and extracts its SFace feature.
func (e *Engine) Embed(_ context.Context, img image.Image, d face.Detection) ([]float32, error) {
	mat, err := toBGR(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	box := gocv.NewMatWithSize(1, 15, gocv.MatTypeCV32F)
	defer box.Close()
	for i, v := range []float32{d.X, d.Y, d.W, d.H} {
		box.SetFloatAt(0, i, v)
	}
	for i, v := range d.Landmarks {
		box.SetFloatAt(0, 4+i, v)
	}
	box.SetFloatAt(0, 14, d.Score)

	aligned := gocv.NewMat()
	defer aligned.Close()
	feature := gocv.NewMat()
	defer feature.Close()

	e.mu.Lock()
	e.recognizer.AlignCrop(mat, box, &aligned)
	e.recognizer.Feature(aligned, &feature)
	e.mu.Unlock()

	if feature.Empty() {
		return nil, face.ErrNoFace
	}
	n := feature.Total()
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = feature.GetFloatAt(0, i)
	}
	return out, nil
}

// Close releases the OpenCV models.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.detector.Close()
	e.recognizer.Close()
	return nil
}

// toBGR copies img into an 8-bit 3-channel BGR Mat.
func toBGR(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}
	buffer := make([]byte, width*height*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			buffer[i] = byte(bl >> 8)
			buffer[i+1] = byte(g >> 8)
			buffer[i+2] = byte(r >> 8)
			i += 3
		}
	}
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, buffer)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create Mat from buffer: %w", err)
	}
	return mat, nil
}
