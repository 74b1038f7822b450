package pigoPkg

import (
	"FaceTracking/internal/geometry"
	"image"
	"io"
	"path/filepath"
	"testing"

	pigo "github.com/esimov/pigo/core"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingCascade(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := DefaultConfig()
	cfg.CascadePath = filepath.Join(t.TempDir(), "facefinder")

	_, err := New(cfg, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read cascade file")
}

func TestOrient(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))

	tests := []struct {
		code geometry.OrientationCode
		w, h int
	}{
		{geometry.OrientationUp, 40, 30},
		{geometry.OrientationDown, 40, 30},
		{geometry.OrientationRightTop, 30, 40},
		{geometry.OrientationLeftBottom, 30, 40},
	}

	for _, tt := range tests {
		b := Orient(img, tt.code).Bounds()
		assert.Equal(t, tt.w, b.Dx(), "code %d", tt.code)
		assert.Equal(t, tt.h, b.Dy(), "code %d", tt.code)
		assert.Equal(t, tt.code.Oriented(geometry.Size{Width: 40, Height: 30}),
			geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())})
	}
}

func TestFacesFromDetections(t *testing.T) {
	dets := []pigo.Detection{
		{Row: 20, Col: 10, Scale: 10, Q: 12},
		{Row: 5, Col: 5, Scale: 4, Q: 1},
	}

	faces := facesFromDetections(dets, 5, geometry.OrientationUp, geometry.Size{Width: 40, Height: 30})
	require.Len(t, faces, 1)
	assert.Equal(t, geometry.Rect{X: 5, Y: 15, Width: 10, Height: 10}, faces[0].BoundingBox)
	assert.Equal(t, 12.0, faces[0].Score)

	// oriented frame is 30x40; the box is mapped back onto the 40x30 raw frame
	faces = facesFromDetections(dets[:1], 5, geometry.OrientationRightTop, geometry.Size{Width: 30, Height: 40})
	require.Len(t, faces, 1)
	assert.Equal(t, geometry.Rect{X: 15, Y: 15, Width: 10, Height: 10}, faces[0].BoundingBox)

	assert.NotNil(t, facesFromDetections(nil, 5, geometry.OrientationUp, geometry.Size{}))
}
