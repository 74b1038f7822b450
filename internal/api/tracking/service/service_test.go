package trackingService

import (
	"FaceTracking/internal/api/tracking"
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/detector"
	"FaceTracking/pkg/utils"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type fakeDetector struct {
	faces []entity.FaceFeature
	size  geometry.Size
	err   error
	codes []geometry.OrientationCode
}

func (d *fakeDetector) Detect(ctx context.Context, frame []byte, code geometry.OrientationCode) (*entity.DetectionResult, error) {
	d.codes = append(d.codes, code)
	if d.err != nil {
		return nil, d.err
	}
	return &entity.DetectionResult{Faces: d.faces, ImageSize: d.size}, nil
}

func (d *fakeDetector) Name() string { return "fake" }
func (d *fakeDetector) Ready() bool  { return true }
func (d *fakeDetector) Close()       {}

type fakeRedis struct {
	mu        sync.Mutex
	streams   map[string]time.Time
	published []*entity.OverlayUpdate
	err       error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{streams: map[string]time.Time{}}
}

func (r *fakeRedis) RegisterStream(ctx context.Context, stream entity.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[stream.ID] = stream.ExpiresAt
	return r.err
}

func (r *fakeRedis) StreamExists(ctx context.Context, streamID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.streams[streamID]
	return ok, r.err
}

func (r *fakeRedis) EndStream(ctx context.Context, streamID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.streams[streamID]
	delete(r.streams, streamID)
	return ok, r.err
}

func (r *fakeRedis) PublishOverlay(ctx context.Context, update *entity.OverlayUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, update)
	return r.err
}

func (r *fakeRedis) LastOverlay(ctx context.Context, streamID string) (*entity.OverlayUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.published) - 1; i >= 0; i-- {
		if r.published[i].StreamID == streamID {
			return r.published[i], nil
		}
	}
	return nil, nil
}

func (r *fakeRedis) SubscribeOverlay(ctx context.Context, streamID string) (<-chan *entity.OverlayUpdate, func() error) {
	ch := make(chan *entity.OverlayUpdate)
	close(ch)
	return ch, func() error { return nil }
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newService(det detector.IFaceDetector, rds *fakeRedis) ITrackingService {
	if rds == nil {
		return NewTrackingService(quietLogger(), det, nil, utils.New(), DefaultConfig())
	}
	return NewTrackingService(quietLogger(), det, rds, utils.New(), DefaultConfig())
}

func pngFrame(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestVideoBox(t *testing.T) {
	s := newService(&fakeDetector{}, nil)

	box, err := s.VideoBox(tracking.VideoBoxRequest{
		Display:  tracking.Size{Width: 1080, Height: 1920},
		Aperture: tracking.Size{Width: 1920, Height: 1080},
	})
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 1080, Height: 1920}, box)

	_, err = s.VideoBox(tracking.VideoBoxRequest{
		Display:  tracking.Size{Width: 1080, Height: 1920},
		Aperture: tracking.Size{Width: 0, Height: 1080},
	})
	assert.ErrorIs(t, err, tracking.ErrDegenerateGeometry)
	assert.ErrorIs(t, err, geometry.ErrDegenerateGeometry)
}

func TestFaceRect(t *testing.T) {
	s := newService(&fakeDetector{}, nil)
	display := geometry.Size{Width: 375, Height: 667}
	aperture := geometry.Size{Width: 1920, Height: 1080}
	face := geometry.Rect{X: 100, Y: 200, Width: 50, Height: 60}

	videoBox, err := geometry.ComputeVideoBox(display, aperture)
	require.NoError(t, err)
	want, err := geometry.MapFaceRect(face, aperture, display, videoBox)
	require.NoError(t, err)

	req := tracking.FaceRectRequest{
		Face:     tracking.Rect{X: 100, Y: 200, Width: 50, Height: 60},
		Aperture: tracking.Size{Width: 1920, Height: 1080},
		Display:  tracking.Size{Width: 375, Height: 667},
	}

	got, err := s.FaceRect(req)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	req.VideoBox = &tracking.Rect{X: videoBox.X, Y: videoBox.Y, Width: videoBox.Width, Height: videoBox.Height}
	got, err = s.FaceRect(req)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	req.Camera = "back"
	back, err := s.FaceRect(req)
	require.NoError(t, err)
	assert.Equal(t, want.Y, back.Y)
	assert.NotEqual(t, want.X, back.X)

	req.Aperture = tracking.Size{}
	_, err = s.FaceRect(req)
	assert.ErrorIs(t, err, tracking.ErrDegenerateGeometry)
}

func TestOrientation(t *testing.T) {
	s := newService(&fakeDetector{}, nil)

	assert.Equal(t, tracking.OrientationResponse{Device: "landscapeLeft", Code: 3}, s.Orientation("landscapeLeft"))
	assert.Equal(t, tracking.OrientationResponse{Device: "portraitUpsideDown", Code: 8}, s.Orientation("PortraitUpsideDown"))
	assert.Equal(t, 6, s.Orientation("sideways").Code)
}

func TestProcessFrame(t *testing.T) {
	faces := []entity.FaceFeature{
		{BoundingBox: geometry.Rect{X: 100, Y: 200, Width: 50, Height: 60}, HasSmile: true},
		{BoundingBox: geometry.Rect{X: 900, Y: 400, Width: 80, Height: 80}, LeftEyeClosed: true},
	}
	det := &fakeDetector{faces: faces}
	s := newService(det, nil)

	frame := entity.Frame{
		StreamID:    "s1",
		Seq:         7,
		Data:        []byte("jpeg"),
		Display:     geometry.Size{Width: 375, Height: 667},
		Aperture:    geometry.Size{Width: 1920, Height: 1080},
		Orientation: geometry.LandscapeLeft,
		Camera:      entity.CameraFront,
	}

	update, err := s.ProcessFrame(context.Background(), frame)
	require.NoError(t, err)

	assert.Equal(t, []geometry.OrientationCode{geometry.OrientationDown}, det.codes)
	assert.Equal(t, "s1", update.StreamID)
	assert.Equal(t, uint64(7), update.Seq)
	assert.True(t, update.Visible)
	assert.Equal(t, 1.0, update.Opacity)
	assert.Equal(t, "fake", update.Detector)
	require.Len(t, update.Faces, 2)

	videoBox, err := geometry.ComputeVideoBox(frame.Display, frame.Aperture)
	require.NoError(t, err)
	assert.Equal(t, videoBox, update.VideoBox)

	for i, f := range faces {
		want, err := geometry.MapFaceRect(f.BoundingBox, frame.Aperture, frame.Display, videoBox)
		require.NoError(t, err)
		assert.Equal(t, want, update.Faces[i].Frame)
		assert.Equal(t, f.Label(), update.Faces[i].Label)
	}
	assert.Equal(t, "has smile: true\nhas closed left eye: false\nhas closed right eye: false", update.Faces[0].Label)
	assert.True(t, update.Faces[1].LeftEyeClosed)
}

func TestProcessFrame_NoFaces(t *testing.T) {
	s := newService(&fakeDetector{}, nil)

	update, err := s.ProcessFrame(context.Background(), entity.Frame{
		StreamID: "s1",
		Data:     []byte("jpeg"),
		Display:  geometry.Size{Width: 375, Height: 667},
		Aperture: geometry.Size{Width: 1920, Height: 1080},
	})
	require.NoError(t, err)

	assert.False(t, update.Visible)
	assert.Equal(t, 0.0, update.Opacity)
	assert.NotNil(t, update.Faces)
	assert.Empty(t, update.Faces)
}

func TestProcessFrame_ApertureFromFrame(t *testing.T) {
	det := &fakeDetector{faces: []entity.FaceFeature{{BoundingBox: geometry.Rect{X: 10, Y: 10, Width: 20, Height: 20}}}}
	s := newService(det, nil)

	update, err := s.ProcessFrame(context.Background(), entity.Frame{
		Data:    pngFrame(t, 64, 48),
		Display: geometry.Size{Width: 300, Height: 400},
	})
	require.NoError(t, err)

	videoBox, err := geometry.ComputeVideoBox(geometry.Size{Width: 300, Height: 400}, geometry.Size{Width: 64, Height: 48})
	require.NoError(t, err)
	assert.Equal(t, videoBox, update.VideoBox)

	_, err = s.ProcessFrame(context.Background(), entity.Frame{
		Data:    []byte("garbage"),
		Display: geometry.Size{Width: 300, Height: 400},
	})
	assert.ErrorIs(t, err, tracking.ErrInvalidFrame)
}

func TestProcessFrame_ApertureFromDetector(t *testing.T) {
	det := &fakeDetector{
		faces: []entity.FaceFeature{{BoundingBox: geometry.Rect{X: 10, Y: 10, Width: 20, Height: 20}}},
		size:  geometry.Size{Width: 640, Height: 480},
	}
	s := newService(det, nil)

	// the payload is not a decodable image, so only the detector's size can be used
	update, err := s.ProcessFrame(context.Background(), entity.Frame{
		Data:    []byte("opaque"),
		Display: geometry.Size{Width: 300, Height: 400},
	})
	require.NoError(t, err)

	videoBox, err := geometry.ComputeVideoBox(geometry.Size{Width: 300, Height: 400}, det.size)
	require.NoError(t, err)
	assert.Equal(t, videoBox, update.VideoBox)
}

func TestProcessFrame_Errors(t *testing.T) {
	frame := entity.Frame{
		Data:     []byte("jpeg"),
		Display:  geometry.Size{Width: 375, Height: 667},
		Aperture: geometry.Size{Width: 1920, Height: 1080},
	}

	_, err := newService(&fakeDetector{}, nil).ProcessFrame(context.Background(), entity.Frame{Data: []byte("x")})
	assert.ErrorIs(t, err, tracking.ErrStreamNotConfigured)

	_, err = newService(&fakeDetector{err: detector.ErrUnavailable}, nil).ProcessFrame(context.Background(), frame)
	assert.ErrorIs(t, err, tracking.ErrDetectorUnavailable)

	_, err = newService(&fakeDetector{err: fmt.Errorf("%w: bad header", detector.ErrInvalidFrame)}, nil).ProcessFrame(context.Background(), frame)
	assert.ErrorIs(t, err, tracking.ErrInvalidFrame)

	boom := errors.New("boom")
	_, err = newService(&fakeDetector{err: boom}, nil).ProcessFrame(context.Background(), frame)
	assert.ErrorIs(t, err, boom)

	degenerate := frame
	degenerate.Display = geometry.Size{Width: 375, Height: 0}
	_, err = newService(&fakeDetector{}, nil).ProcessFrame(context.Background(), degenerate)
	assert.ErrorIs(t, err, tracking.ErrDegenerateGeometry)
}

func TestStreams(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	rds := newFakeRedis()
	s := newService(&fakeDetector{}, rds)
	ctx := context.Background()

	stream, err := s.CreateStream(ctx)
	require.NoError(t, err)
	assert.Len(t, stream.ID, 26)
	assert.NotEmpty(t, stream.Token)
	assert.True(t, stream.ExpiresAt.After(time.Now()))

	active, err := s.StreamActive(ctx, stream.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, s.EndStream(ctx, stream.ID))
	active, err = s.StreamActive(ctx, stream.ID)
	require.NoError(t, err)
	assert.False(t, active)

	assert.ErrorIs(t, s.EndStream(ctx, stream.ID), tracking.ErrStreamNotFound)
}

func TestStreams_WithoutRedis(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	s := newService(&fakeDetector{}, nil)
	ctx := context.Background()

	stream, err := s.CreateStream(ctx)
	require.NoError(t, err)

	active, err := s.StreamActive(ctx, stream.ID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, s.PublishOverlay(ctx, entity.HiddenOverlay(stream.ID, 1)))

	last, err := s.LastOverlay(ctx, stream.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}
