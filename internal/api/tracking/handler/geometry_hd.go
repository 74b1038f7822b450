package trackingHandler

import (
	"FaceTracking/internal/api/tracking"
	"FaceTracking/pkg/handlerUtil"
	"FaceTracking/pkg/log"
	"FaceTracking/pkg/response"

	"github.com/gofiber/fiber/v2"
)

func (h *TrackingHandler) VideoBox(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req tracking.VideoBoxRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, response.Wrap(tracking.ErrBadRequest, err), ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	box, err := h.trackingService.VideoBox(req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "compute_video_box")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, box)
}

func (h *TrackingHandler) FaceRect(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req tracking.FaceRectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, response.Wrap(tracking.ErrBadRequest, err), ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	rect, err := h.trackingService.FaceRect(req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "map_face_rect")
	}

	h.log.WithFields(log.Fields{
		log.RequestIDKey: requestID,
		"rect":           rect.String(),
	}).Debug("Face rect mapped")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, rect)
}

func (h *TrackingHandler) Orientation(ctx *fiber.Ctx) error {
	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, h.trackingService.Orientation(ctx.Query("device")))
}
