package main

import (
	"FaceTracking/internal/config"
	"FaceTracking/pkg/log"
	"FaceTracking/pkg/redis"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(log.Fields{"error": err.Error()}, "Error loading .env file")
	}
	logger := log.NewLogger()

	trackingConfig, err := config.LoadTrackingConfig()
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Invalid tracking configuration")
	}

	faceDetector, err := config.NewFaceDetector(trackingConfig, logger)
	if err != nil {
		log.Fatal(log.Fields{
			"backend": trackingConfig.DetectorBackend,
			"error":   err.Error(),
		}, "Error creating face detector")
	}

	options := []config.ServerOption{
		config.WithFiber(config.NewFiber(logger)),
		config.WithLogger(logger),
		config.WithValidator(config.NewValidator()),
		config.WithFaceDetector(faceDetector),
		config.WithTrackingConfig(trackingConfig),
		config.WithMiddleware(),
		config.WithUtils(),
	}
	if trackingConfig.RedisEnabled {
		options = append(options, config.WithRedisServer(redis.New(logger)))
	} else {
		logger.Warn("REDIS_ADDRESS not set, overlay viewers and stream revocation are disabled")
	}

	server, err := config.NewServer(options...)
	if err != nil {
		log.Fatal(log.Fields{"error": err.Error()}, "Error creating server")
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Infof("Server started with %s face detector", faceDetector.Name())

	<-sigChan
	logger.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
