package trackingHandler

import (
	contextPkg "FaceTracking/pkg/context"
	"FaceTracking/pkg/handlerUtil"
	jwtPkg "FaceTracking/pkg/jwt"
	"FaceTracking/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *TrackingHandler) CreateStream(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	stream, err := h.trackingService.CreateStream(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_stream")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			log.RequestIDKey: requestID,
			log.StreamIDKey:  stream.ID,
		}).Info("Stream token issued")
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, stream)
	}
}

func (h *TrackingHandler) EndStream(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	claims, err := jwtPkg.GetStreamClaims(ctx)
	if err != nil || claims.StreamID != ctx.Params("stream_id") {
		return errHandler.HandleUnauthorized(ctx, requestID, "stream token does not grant access to this stream")
	}

	if err := h.trackingService.EndStream(c, claims.StreamID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "end_stream")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
}
