package trackingHandler

import (
	"FaceTracking/internal/api/tracking"
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	jwtPkg "FaceTracking/pkg/jwt"
	"FaceTracking/pkg/log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

const (
	maxReadTimeout = 60 * time.Second
	writeTimeout   = 10 * time.Second
	pingInterval   = 30 * time.Second
)

type socketWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *socketWriter) WriteJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, payload)
}

func (w *socketWriter) Ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (h *TrackingHandler) setPingHandler(c *websocket.Conn) {
	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})
}

// handleCaptureWebSocket receives StreamConfig text messages and encoded
// frames as binary messages, and answers every processed frame with an
// overlay update.
func (h *TrackingHandler) handleCaptureWebSocket(c *websocket.Conn) {
	claims, ok := c.Locals(jwtPkg.StreamLocals).(entity.StreamClaims)
	if !ok {
		return
	}

	streamID := claims.StreamID
	logger := log.WithStream(h.log, streamID)
	logger.Info("Capture WebSocket client connected")
	defer logger.Info("Capture WebSocket client disconnected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := &socketWriter{conn: c}

	active, err := h.trackingService.StreamActive(ctx, streamID)
	if err != nil || !active {
		logger.Warn("Capture rejected, stream not active")
		_ = writer.WriteJSON(tracking.ErrorMessage{StreamID: streamID, Error: tracking.ErrStreamNotFound.Error()})
		return
	}

	pipeline := h.trackingService.NewPipeline(ctx, func(frame entity.Frame, update *entity.OverlayUpdate, err error) {
		if err != nil {
			logger.WithField("seq", frame.Seq).Warnf("Frame skipped: %v", err)
			if werr := writer.WriteJSON(tracking.ErrorMessage{StreamID: streamID, Seq: frame.Seq, Error: err.Error()}); werr != nil {
				cancel()
			}
			return
		}

		if werr := writer.WriteJSON(update); werr != nil {
			logger.Errorf("Error writing overlay update: %v", werr)
			cancel()
		}
	})
	defer pipeline.Close()

	h.setPingHandler(c)

	var settings tracking.FrameSettings

	for ctx.Err() == nil {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("Capture WebSocket error: %v", err)
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			var cfg tracking.StreamConfig
			if err := json.Unmarshal(message, &cfg); err != nil {
				_ = writer.WriteJSON(tracking.ErrorMessage{StreamID: streamID, Error: tracking.ErrBadRequest.Error()})
				continue
			}
			if err := h.validator.Struct(cfg); err != nil {
				_ = writer.WriteJSON(tracking.ErrorMessage{StreamID: streamID, Error: "Validation failed: " + err.Error()})
				continue
			}

			settings = cfg.Settings()
			logger.WithFields(log.Fields{
				"display":     settings.Display.String(),
				"aperture":    settings.Aperture.String(),
				"orientation": settings.Orientation.String(),
				"camera":      settings.Camera,
			}).Info("Stream configured")

		case websocket.BinaryMessage:
			if settings.Display == (geometry.Size{}) {
				_ = writer.WriteJSON(tracking.ErrorMessage{StreamID: streamID, Error: tracking.ErrStreamNotConfigured.Error()})
				continue
			}

			pipeline.Submit(entity.Frame{
				StreamID:    streamID,
				Data:        message,
				Display:     settings.Display,
				Aperture:    settings.Aperture,
				Orientation: settings.Orientation,
				Camera:      settings.Camera,
				ReceivedAt:  time.Now(),
			})

		default:
			logger.Warnf("Received unexpected message type: %d", messageType)
		}
	}
}

// handleOverlayWebSocket relays a stream's overlay updates to a viewer,
// starting with the most recent one.
func (h *TrackingHandler) handleOverlayWebSocket(c *websocket.Conn) {
	claims, ok := c.Locals(jwtPkg.StreamLocals).(entity.StreamClaims)
	if !ok {
		return
	}

	streamID := claims.StreamID
	logger := log.WithStream(h.log, streamID)
	logger.Info("Overlay viewer connected")
	defer logger.Info("Overlay viewer disconnected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := &socketWriter{conn: c}

	updates, closeSub := h.trackingService.SubscribeOverlay(ctx, streamID)
	defer func() {
		if err := closeSub(); err != nil {
			logger.Warnf("Error closing overlay subscription: %v", err)
		}
	}()

	if last, err := h.trackingService.LastOverlay(ctx, streamID); err != nil {
		logger.Warnf("Error loading last overlay: %v", err)
	} else if last != nil {
		if err := writer.WriteJSON(last); err != nil {
			return
		}
	}

	h.setPingHandler(c)

	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := writer.WriteJSON(update); err != nil {
				logger.Errorf("Error writing overlay update: %v", err)
				return
			}
		case <-ticker.C:
			if err := writer.Ping(); err != nil {
				return
			}
		}
	}
}
