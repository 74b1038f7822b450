package trackingHandler

import (
	"FaceTracking/internal/api/tracking"
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	contextPkg "FaceTracking/pkg/context"
	"FaceTracking/pkg/handlerUtil"
	"FaceTracking/pkg/log"
	"FaceTracking/pkg/response"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

// DetectFrame runs one uploaded image through the same path as a streamed
// frame. Without an explicit orientation the image's EXIF tag is used.
func (h *TrackingHandler) DetectFrame(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.Handle(ctx, requestID, response.Wrap(tracking.ErrBadRequest, err), ctx.Path(), "read_form_file")
	}

	h.log.WithFields(log.Fields{
		log.RequestIDKey: requestID,
		"file_name":      file.Filename,
		"file_size":      file.Size,
	}).Debug("Processing frame upload")

	if err := h.utils.ValidateImageFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, response.Wrap(tracking.ErrInvalidFrame, err), ctx.Path(), "validate_image_file")
	}

	var form tracking.FrameForm
	if err := ctx.BodyParser(&form); err != nil {
		return errHandler.Handle(ctx, requestID, response.Wrap(tracking.ErrBadRequest, err), ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(form); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	data, err := h.utils.ReadFile(file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
	}

	settings := form.Settings()
	if form.Orientation == "" {
		if code, ok := h.utils.FrameOrientation(data); ok {
			settings.Orientation = geometry.DeviceOrientationFor(code)
		}
	}

	update, err := h.trackingService.ProcessFrame(c, entity.Frame{
		Data:        data,
		Display:     settings.Display,
		Orientation: settings.Orientation,
		Camera:      settings.Camera,
		ReceivedAt:  time.Now(),
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "process_frame")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, update)
	}
}
