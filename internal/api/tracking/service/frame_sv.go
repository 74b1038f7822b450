package trackingService

import (
	"FaceTracking/internal/api/tracking"
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/detector"
	"FaceTracking/pkg/log"
	"FaceTracking/pkg/response"
	"errors"
	"fmt"

	"golang.org/x/net/context"
)

// ProcessFrame runs detection on one frame and maps every face into display
// coordinates. A frame without a configured aperture uses the size the
// detector reports, or its decoded header when the detector reports none.
func (s *trackingService) ProcessFrame(ctx context.Context, frame entity.Frame) (*entity.OverlayUpdate, error) {
	if frame.Display == (geometry.Size{}) {
		return nil, tracking.ErrStreamNotConfigured
	}

	code := geometry.ExifOrientation(frame.Orientation)

	detectCtx, cancel := context.WithTimeout(ctx, s.cfg.DetectTimeout)
	defer cancel()

	result, err := s.detector.Detect(detectCtx, frame.Data, code)
	if err != nil {
		if errors.Is(err, detector.ErrUnavailable) {
			return nil, response.Wrap(tracking.ErrDetectorUnavailable, err)
		}
		if errors.Is(err, detector.ErrInvalidFrame) {
			return nil, response.Wrap(tracking.ErrInvalidFrame, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	if frame.Aperture == (geometry.Size{}) {
		frame.Aperture = result.ImageSize
		if frame.Aperture == (geometry.Size{}) {
			size, err := s.utils.ImageSize(frame.Data)
			if err != nil {
				return nil, response.Wrap(tracking.ErrInvalidFrame, err)
			}
			frame.Aperture = size
		}
	}

	boxes := make([]geometry.Rect, len(result.Faces))
	for i, f := range result.Faces {
		boxes[i] = f.BoundingBox
	}

	videoBox, rects, err := s.mapperFor(frame.Camera).MapFaces(frame.Display, frame.Aperture, boxes)
	if err != nil {
		return nil, degenerate(err)
	}

	update := entity.HiddenOverlay(frame.StreamID, frame.Seq)
	update.VideoBox = videoBox
	update.Detector = s.detector.Name()

	for i, rect := range rects {
		f := result.Faces[i]
		update.Faces = append(update.Faces, entity.FaceOverlay{
			Frame:          rect,
			Label:          f.Label(),
			HasSmile:       f.HasSmile,
			LeftEyeClosed:  f.LeftEyeClosed,
			RightEyeClosed: f.RightEyeClosed,
		})
	}
	if len(update.Faces) > 0 {
		update.Visible = true
		update.Opacity = 1
	}

	log.WithStream(s.log, frame.StreamID).WithFields(log.Fields{
		"seq":         frame.Seq,
		"faces":       len(update.Faces),
		"orientation": int(code),
		"video_box":   videoBox.String(),
	}).Debug("Frame processed")

	return update, nil
}
