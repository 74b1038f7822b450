package detector

import (
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"context"
	"errors"
)

const (
	BackendRemote = "remote"
	BackendPigo   = "pigo"
)

var (
	ErrUnavailable  = errors.New("face detector unavailable")
	ErrInvalidFrame = errors.New("frame could not be decoded")
)

// IFaceDetector finds faces in one encoded frame. Returned bounding boxes are
// in the sensor (aperture) coordinate space of the unrotated frame, and
// ImageSize is that frame's size when the backend knows it.
type IFaceDetector interface {
	Detect(ctx context.Context, frame []byte, code geometry.OrientationCode) (*entity.DetectionResult, error)
	Name() string
	// Ready reports whether Detect can run without first reaching a backend.
	Ready() bool
	Close()
}
