//go:build !gocv

package opencv

import (
	"context"
	"errors"

	"kycgate/internal/evidence/biometric/face"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/models"
)

// ErrUnavailable is returned when the binary was built without the gocv tag.
var ErrUnavailable = errors.New("opencv face engine not compiled in: rebuild with -tags gocv")

// Loader always fails in builds without OpenCV.
func Loader(_ *models.Fetcher, _ config.Face) face.Loader {
	return func(context.Context) (face.Engine, error) {
		return nil, ErrUnavailable
	}
}
