package redis

import (
	"FaceTracking/internal/entity"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrStreamExpired = errors.New("stream already expired")

const lastOverlayTTL = time.Minute

type IRedis interface {
	RegisterStream(ctx context.Context, stream entity.Stream) error
	StreamExists(ctx context.Context, streamID string) (bool, error)
	EndStream(ctx context.Context, streamID string) (bool, error)
	PublishOverlay(ctx context.Context, update *entity.OverlayUpdate) error
	LastOverlay(ctx context.Context, streamID string) (*entity.OverlayUpdate, error)
	SubscribeOverlay(ctx context.Context, streamID string) (<-chan *entity.OverlayUpdate, func() error)
}

type redisClient struct {
	client *redis.Client
	log    *logrus.Logger
}

func OverlayChannel(streamID string) string {
	return "overlay:" + streamID
}

func streamKey(streamID string) string {
	return "stream:" + streamID
}

func lastOverlayKey(streamID string) string {
	return "overlay:last:" + streamID
}

func New(log *logrus.Logger) IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	log.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		log.Info("Successfully connected to Redis")
	}

	return NewWithClient(client, log)
}

func NewWithClient(client *redis.Client, log *logrus.Logger) IRedis {
	return &redisClient{client: client, log: log}
}

func (r *redisClient) RegisterStream(ctx context.Context, stream entity.Stream) error {
	ttl := time.Until(stream.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("stream %s: %w", stream.ID, ErrStreamExpired)
	}

	if err := r.client.Set(ctx, streamKey(stream.ID), stream.ExpiresAt.Unix(), ttl).Err(); err != nil {
		r.log.Error(fmt.Sprintf("Error registering stream %s: %v", stream.ID, err))
		return err
	}

	r.log.Debug(fmt.Sprintf("Registered stream %s until %s", stream.ID, stream.ExpiresAt.Format(time.RFC3339)))
	return nil
}

func (r *redisClient) StreamExists(ctx context.Context, streamID string) (bool, error) {
	n, err := r.client.Exists(ctx, streamKey(streamID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisClient) EndStream(ctx context.Context, streamID string) (bool, error) {
	n, err := r.client.Del(ctx, streamKey(streamID), lastOverlayKey(streamID)).Result()
	if err != nil {
		r.log.Error(fmt.Sprintf("Error ending stream %s: %v", streamID, err))
		return false, err
	}
	return n > 0, nil
}

func (r *redisClient) PublishOverlay(ctx context.Context, update *entity.OverlayUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, lastOverlayKey(update.StreamID), payload, lastOverlayTTL)
	pipe.Publish(ctx, OverlayChannel(update.StreamID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.WithFields(logrus.Fields{
			"stream_id": update.StreamID,
			"seq":       update.Seq,
		}).Error(fmt.Sprintf("Error publishing overlay: %v", err))
		return err
	}

	return nil
}

func (r *redisClient) LastOverlay(ctx context.Context, streamID string) (*entity.OverlayUpdate, error) {
	val, err := r.client.Get(ctx, lastOverlayKey(streamID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var update entity.OverlayUpdate
	if err := json.Unmarshal(val, &update); err != nil {
		return nil, fmt.Errorf("decode overlay: %w", err)
	}
	return &update, nil
}

// SubscribeOverlay relays decoded updates until ctx is done or the returned
// close func is called. Undecodable payloads are skipped.
func (r *redisClient) SubscribeOverlay(ctx context.Context, streamID string) (<-chan *entity.OverlayUpdate, func() error) {
	sub := r.client.Subscribe(ctx, OverlayChannel(streamID))
	out := make(chan *entity.OverlayUpdate, 8)

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				update := new(entity.OverlayUpdate)
				if err := json.Unmarshal([]byte(msg.Payload), update); err != nil {
					r.log.WithField("stream_id", streamID).Warn(fmt.Sprintf("Skipping malformed overlay: %v", err))
					continue
				}
				select {
				case out <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, sub.Close
}
