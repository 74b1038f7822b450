package config

import (
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/detector"
	"context"
	"io"
	"net/http/httptest"
	"os"
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

func clearTrackingEnv(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "DETECTOR_BACKEND", "AI_FACE_DETECTION_URL", "PIGO_CASCADE_PATH",
		"PIGO_MIN_QUALITY", "FRAME_QUEUE_SIZE", "CAMERA_MIRROR", "SENSOR_SWAP_AXES",
		"STREAM_TOKEN_TTL", "DETECT_TIMEOUT", "REDIS_ADDRESS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadTrackingConfig_Defaults(t *testing.T) {
	clearTrackingEnv(t)

	cfg, err := LoadTrackingConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, detector.BackendRemote, cfg.DetectorBackend)
	assert.Equal(t, "ws://localhost:8000/api/v1/face/ws", cfg.FaceDetectionURL)
	assert.Equal(t, 1, cfg.FrameQueueSize)
	assert.Equal(t, time.Hour, cfg.StreamTokenTTL)
	assert.False(t, cfg.RedisEnabled)

	svc := cfg.Service()
	assert.Equal(t, geometry.DefaultMapper, svc.Mapper)
	assert.Equal(t, 1, svc.QueueSize)
}

func TestLoadTrackingConfig_Overrides(t *testing.T) {
	clearTrackingEnv(t)
	t.Setenv("DETECTOR_BACKEND", "pigo")
	t.Setenv("PIGO_CASCADE_PATH", "/data/facefinder")
	t.Setenv("PIGO_MIN_QUALITY", "9.5")
	t.Setenv("FRAME_QUEUE_SIZE", "3")
	t.Setenv("CAMERA_MIRROR", "false")
	t.Setenv("STREAM_TOKEN_TTL", "15m")

	cfg, err := LoadTrackingConfig()
	require.NoError(t, err)

	assert.Equal(t, detector.BackendPigo, cfg.DetectorBackend)
	assert.Equal(t, geometry.Mapper{SwapAxes: true, Mirror: false}, cfg.Service().Mapper)
	assert.Equal(t, 15*time.Minute, cfg.StreamTokenTTL)

	pigo := cfg.Pigo()
	assert.Equal(t, "/data/facefinder", pigo.CascadePath)
	assert.Equal(t, float32(9.5), pigo.MinQuality)
	assert.Equal(t, 3, cfg.Service().QueueSize)
}

func TestLoadTrackingConfig_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown backend":       {"DETECTOR_BACKEND": "opencv"},
		"pigo without cascade":  {"DETECTOR_BACKEND": "pigo"},
		"queue too small":       {"FRAME_QUEUE_SIZE": "0"},
		"bad bool":              {"CAMERA_MIRROR": "maybe"},
		"bad duration":          {"STREAM_TOKEN_TTL": "forever"},
		"non numeric port":      {"APP_PORT": "http"},
		"non numeric threshold": {"PIGO_MIN_QUALITY": "high"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearTrackingEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadTrackingConfig()
			assert.Error(t, err)
		})
	}
}

type stubDetector struct{}

func (stubDetector) Detect(context.Context, []byte, geometry.OrientationCode) (*entity.DetectionResult, error) {
	return &entity.DetectionResult{}, nil
}
func (stubDetector) Name() string { return "stub" }
func (stubDetector) Ready() bool  { return true }
func (stubDetector) Close()       {}

func TestNewServer(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	_, err := NewServer(WithFiber(NewFiber(logger)), WithLogger(logger))
	assert.Error(t, err)

	server, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithValidator(NewValidator()),
		WithMiddleware(),
		WithUtils(),
		WithFaceDetector(stubDetector{}),
		WithTrackingConfig(TrackingConfig{FrameQueueSize: 1}),
	)
	require.NoError(t, err)

	server.RegisterHandler()
	app := server.Router()

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	health, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(health), `"detector":"stub"`)
	assert.Contains(t, string(health), `"detector_ready":true`)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/geometry/orientation?device=landscapeLeft", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
