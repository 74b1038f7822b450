package trackingHandler

import (
	trackingService "FaceTracking/internal/api/tracking/service"
	"FaceTracking/internal/middleware"
	"FaceTracking/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type TrackingHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	trackingService trackingService.ITrackingService
	utils           utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ts trackingService.ITrackingService,
	utils utils.IUtils,
) *TrackingHandler {
	return &TrackingHandler{
		trackingService: ts,
		log:             log,
		validator:       validator,
		middleware:      middleware,
		utils:           utils,
	}
}

func (h *TrackingHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	geometry := srv.Group("/geometry", h.middleware.NewRateLimiter)
	geometry.Post("/video-box", h.VideoBox)
	geometry.Post("/face-rect", h.FaceRect)
	geometry.Get("/orientation", h.Orientation)

	tracking := srv.Group("/tracking")
	tracking.Post("/streams", h.middleware.NewRateLimiter, h.CreateStream)
	tracking.Delete("/streams/:stream_id", h.middleware.NewStreamTokenMiddleware, h.EndStream)
	tracking.Post("/frames", h.middleware.NewRateLimiter, h.DetectFrame)

	tracking.Use("/ws", wsMiddleware, h.middleware.NewStreamTokenMiddleware)
	tracking.Get("/ws", websocket.New(h.handleCaptureWebSocket))

	tracking.Use("/overlay/ws", wsMiddleware, h.middleware.NewStreamTokenMiddleware)
	tracking.Get("/overlay/ws", websocket.New(h.handleOverlayWebSocket))
}
