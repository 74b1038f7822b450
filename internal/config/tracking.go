package config

import (
	trackingService "FaceTracking/internal/api/tracking/service"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/detector"
	pigoPkg "FaceTracking/pkg/pigo"
	websocketPkg "FaceTracking/pkg/websocket"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

type TrackingConfig struct {
	Port             string `validate:"required,numeric"`
	DetectorBackend  string `validate:"oneof=remote pigo"`
	FaceDetectionURL string `validate:"required_if=DetectorBackend remote"`
	PigoCascadePath  string `validate:"required_if=DetectorBackend pigo"`
	PigoMinQuality   float64
	FrameQueueSize   int `validate:"gte=1,lte=64"`
	CameraMirror     bool
	SensorSwapAxes   bool
	StreamTokenTTL   time.Duration `validate:"gt=0"`
	DetectTimeout    time.Duration `validate:"gt=0"`
	RedisEnabled     bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// LoadTrackingConfig reads the tracking settings from the environment and
// validates them.
func LoadTrackingConfig() (TrackingConfig, error) {
	cfg := TrackingConfig{
		Port:             envOr("APP_PORT", "3000"),
		DetectorBackend:  envOr("DETECTOR_BACKEND", detector.BackendRemote),
		FaceDetectionURL: websocketPkg.FaceDetectionURL(),
		PigoCascadePath:  os.Getenv("PIGO_CASCADE_PATH"),
		RedisEnabled:     os.Getenv("REDIS_ADDRESS") != "",
	}

	var err error

	cfg.PigoMinQuality, err = strconv.ParseFloat(envOr("PIGO_MIN_QUALITY", "5"), 64)
	if err != nil {
		return cfg, fmt.Errorf("PIGO_MIN_QUALITY: %w", err)
	}
	if cfg.FrameQueueSize, err = strconv.Atoi(envOr("FRAME_QUEUE_SIZE", "1")); err != nil {
		return cfg, fmt.Errorf("FRAME_QUEUE_SIZE: %w", err)
	}
	if cfg.CameraMirror, err = envBool("CAMERA_MIRROR", true); err != nil {
		return cfg, err
	}
	if cfg.SensorSwapAxes, err = envBool("SENSOR_SWAP_AXES", true); err != nil {
		return cfg, err
	}
	if cfg.StreamTokenTTL, err = envDuration("STREAM_TOKEN_TTL", time.Hour); err != nil {
		return cfg, err
	}
	if cfg.DetectTimeout, err = envDuration("DETECT_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}

	if err := NewValidator().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid tracking config: %w", err)
	}

	return cfg, nil
}

func (c TrackingConfig) Service() trackingService.Config {
	return trackingService.Config{
		Mapper:        geometry.Mapper{SwapAxes: c.SensorSwapAxes, Mirror: c.CameraMirror},
		QueueSize:     c.FrameQueueSize,
		StreamTTL:     c.StreamTokenTTL,
		DetectTimeout: c.DetectTimeout,
	}
}

func (c TrackingConfig) Pigo() pigoPkg.Config {
	cfg := pigoPkg.DefaultConfig()
	cfg.CascadePath = c.PigoCascadePath
	cfg.MinQuality = float32(c.PigoMinQuality)
	return cfg
}

// NewFaceDetector builds the configured detector backend.
func NewFaceDetector(c TrackingConfig, log *logrus.Logger) (detector.IFaceDetector, error) {
	switch c.DetectorBackend {
	case detector.BackendPigo:
		return pigoPkg.New(c.Pigo(), log)
	default:
		return websocketPkg.NewFaceDetector(c.FaceDetectionURL, log), nil
	}
}
