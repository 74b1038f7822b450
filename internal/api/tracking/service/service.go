package trackingService

import (
	"FaceTracking/internal/api/tracking"
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/detector"
	"FaceTracking/pkg/redis"
	"FaceTracking/pkg/utils"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type Config struct {
	Mapper        geometry.Mapper
	QueueSize     int
	StreamTTL     time.Duration
	DetectTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Mapper:        geometry.DefaultMapper,
		QueueSize:     1,
		StreamTTL:     time.Hour,
		DetectTimeout: 5 * time.Second,
	}
}

type ITrackingService interface {
	VideoBox(req tracking.VideoBoxRequest) (geometry.Rect, error)
	FaceRect(req tracking.FaceRectRequest) (geometry.Rect, error)
	Orientation(device string) tracking.OrientationResponse

	CreateStream(ctx context.Context) (*entity.Stream, error)
	StreamActive(ctx context.Context, streamID string) (bool, error)
	EndStream(ctx context.Context, streamID string) error

	ProcessFrame(ctx context.Context, frame entity.Frame) (*entity.OverlayUpdate, error)
	PublishOverlay(ctx context.Context, update *entity.OverlayUpdate) error
	LastOverlay(ctx context.Context, streamID string) (*entity.OverlayUpdate, error)
	SubscribeOverlay(ctx context.Context, streamID string) (<-chan *entity.OverlayUpdate, func() error)
	NewPipeline(ctx context.Context, deliver DeliverFunc) *Pipeline
}

type trackingService struct {
	log      *logrus.Logger
	detector detector.IFaceDetector
	redis    redis.IRedis
	utils    utils.IUtils
	cfg      Config
}

// NewTrackingService builds the service. rds may be nil, in which case
// streams are not registered and overlays are not fanned out.
func NewTrackingService(log *logrus.Logger, det detector.IFaceDetector, rds redis.IRedis, u utils.IUtils, cfg Config) ITrackingService {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.StreamTTL <= 0 {
		cfg.StreamTTL = time.Hour
	}
	if cfg.DetectTimeout <= 0 {
		cfg.DetectTimeout = 5 * time.Second
	}

	return &trackingService{
		log:      log,
		detector: det,
		redis:    rds,
		utils:    u,
		cfg:      cfg,
	}
}
