package trackingService

import (
	"FaceTracking/internal/api/tracking"
	"FaceTracking/internal/entity"
	jwtPkg "FaceTracking/pkg/jwt"
	"FaceTracking/pkg/log"
	"FaceTracking/pkg/response"
	"time"

	"golang.org/x/net/context"
)

func (s *trackingService) CreateStream(ctx context.Context) (*entity.Stream, error) {
	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return nil, response.Wrap(tracking.ErrInternalServerError, err)
	}

	token, expiresAt, err := jwtPkg.SignStream(id, s.cfg.StreamTTL)
	if err != nil {
		return nil, response.Wrap(tracking.ErrInternalServerError, err)
	}

	stream := &entity.Stream{ID: id, Token: token, ExpiresAt: expiresAt}

	if s.redis != nil {
		if err := s.redis.RegisterStream(ctx, *stream); err != nil {
			return nil, response.Wrap(tracking.ErrInternalServerError, err)
		}
	}

	log.WithStream(log.WithRequestID(s.log, ctx), id).WithField("expires_at", expiresAt.Format(time.RFC3339)).Info("Stream created")

	return stream, nil
}

// StreamActive reports whether the stream has not been ended. Without redis
// every stream with a valid token is active.
func (s *trackingService) StreamActive(ctx context.Context, streamID string) (bool, error) {
	if s.redis == nil {
		return true, nil
	}
	return s.redis.StreamExists(ctx, streamID)
}

func (s *trackingService) EndStream(ctx context.Context, streamID string) error {
	if s.redis == nil {
		return nil
	}

	ended, err := s.redis.EndStream(ctx, streamID)
	if err != nil {
		return response.Wrap(tracking.ErrInternalServerError, err)
	}
	if !ended {
		return tracking.ErrStreamNotFound
	}

	log.WithStream(log.WithRequestID(s.log, ctx), streamID).Info("Stream ended")
	return nil
}

func (s *trackingService) PublishOverlay(ctx context.Context, update *entity.OverlayUpdate) error {
	if s.redis == nil || update == nil {
		return nil
	}
	return s.redis.PublishOverlay(ctx, update)
}

func (s *trackingService) LastOverlay(ctx context.Context, streamID string) (*entity.OverlayUpdate, error) {
	if s.redis == nil {
		return nil, nil
	}
	return s.redis.LastOverlay(ctx, streamID)
}

func (s *trackingService) SubscribeOverlay(ctx context.Context, streamID string) (<-chan *entity.OverlayUpdate, func() error) {
	if s.redis == nil {
		ch := make(chan *entity.OverlayUpdate)
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch, func() error { return nil }
	}
	return s.redis.SubscribeOverlay(ctx, streamID)
}
