// Package face compares the face on an identity document with a selfie.
//
// Detection and embedding are delegated to an Engine; the Matcher owns the
// selection of the face to use, normalisation and cosine similarity.
package face

import (
	"context"
	"errors"
	"image"
)

// Messages reported when an image has no usable face.
const (
	MsgNoFaceDocument = "Could not detect a face on the ID image."
	MsgNoFaceSelfie   = "Could not detect a face on the selfie image."
)

// ErrNoFace is returned when no usable face was found in an image.
var ErrNoFace = errors.New("no face detected")

// Detection is one detected face. Box is in image pixels; Landmarks holds the
// five (x, y) facial landmarks some engines need for alignment.
type Detection struct {
	X, Y, W, H float32
	Score      float32
	Landmarks  [10]float32
}

// Area returns the box area.
func (d Detection) Area() float32 {
	return d.W * d.H
}

// Rect returns the box as integer corners.
func (d Detection) Rect() image.Rectangle {
	return image.Rect(int(d.X), int(d.Y), int(d.X+d.W), int(d.Y+d.H))
}

// Engine detects faces and extracts face embeddings.
type Engine interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
	Embed(ctx context.Context, img image.Image, face Detection) ([]float32, error)
}

// Largest returns the detection with the largest box; the first one wins ties.
func Largest(faces []Detection) (Detection, bool) {
	if len(faces) == 0 {
		return Detection{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Area() > best.Area() {
			best = f
		}
	}
	return best, true
}
