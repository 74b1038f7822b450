package config

import (
	trackingHandler "FaceTracking/internal/api/tracking/handler"
	trackingService "FaceTracking/internal/api/tracking/service"
	"FaceTracking/internal/middleware"
	"FaceTracking/pkg/detector"
	"FaceTracking/pkg/redis"
	"FaceTracking/pkg/utils"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	redisServer  redis.IRedis
	faceDetector detector.IFaceDetector
	tracking     TrackingConfig
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.faceDetector == nil {
		return nil, fmt.Errorf("face detector is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithFaceDetector(faceDetector detector.IFaceDetector) ServerOption {
	return func(s *Server) error {
		s.faceDetector = faceDetector
		return nil
	}
}

func WithTrackingConfig(cfg TrackingConfig) ServerOption {
	return func(s *Server) error {
		s.tracking = cfg
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Tracking
	trackingServices := trackingService.NewTrackingService(s.log, s.faceDetector, s.redisServer, s.utils, s.tracking.Service())
	trackingHandlers := trackingHandler.New(s.log, s.validator, s.middleware, trackingServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, trackingHandlers)
}

// Router mounts the registered handlers under /api/v1. Run calls it; tests
// use it to exercise the app without listening.
func (s *Server) Router() *fiber.App {
	s.engine.Use(s.middleware.NewRequestIDMiddleware(), middleware.LoggerConfig())

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}

	return s.engine
}

func (s *Server) Run() error {
	port := s.tracking.Port
	if port == "" {
		port = "3000"
	}

	if err := s.Router().Listen(fmt.Sprintf(":%s", port)); err != nil {
		s.faceDetector.Close()
		return err
	}

	return nil
}

func (s *Server) Shutdown() error {
	defer s.faceDetector.Close()
	return s.engine.Shutdown()
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message":        "Server is Healthy!",
			"detector":       s.faceDetector.Name(),
			"detector_ready": s.faceDetector.Ready(),
		})
	})
}
