package trackingService

import (
	"FaceTracking/internal/api/tracking"
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/response"
	"errors"
)

func degenerate(err error) error {
	if errors.Is(err, geometry.ErrDegenerateGeometry) {
		return response.Wrap(tracking.ErrDegenerateGeometry, err)
	}
	return err
}

func (s *trackingService) mapperFor(camera entity.CameraPosition) geometry.Mapper {
	m := s.cfg.Mapper
	if camera == entity.CameraBack {
		m.Mirror = false
	}
	return m
}

func (s *trackingService) VideoBox(req tracking.VideoBoxRequest) (geometry.Rect, error) {
	box, err := s.cfg.Mapper.VideoBox(req.Display.Geometry(), req.Aperture.Geometry())
	if err != nil {
		return geometry.Rect{}, degenerate(err)
	}
	return box, nil
}

func (s *trackingService) FaceRect(req tracking.FaceRectRequest) (geometry.Rect, error) {
	m := s.mapperFor(tracking.ParseCamera(req.Camera))
	display, aperture := req.Display.Geometry(), req.Aperture.Geometry()

	var videoBox geometry.Rect
	if req.VideoBox != nil {
		videoBox = req.VideoBox.Geometry()
	} else {
		box, err := m.VideoBox(display, aperture)
		if err != nil {
			return geometry.Rect{}, degenerate(err)
		}
		videoBox = box
	}

	rect, err := m.MapFaceRect(req.Face.Geometry(), aperture, display, videoBox)
	if err != nil {
		return geometry.Rect{}, degenerate(err)
	}
	return rect, nil
}

func (s *trackingService) Orientation(device string) tracking.OrientationResponse {
	o := geometry.ParseDeviceOrientation(device)
	return tracking.OrientationResponse{
		Device: o.String(),
		Code:   int(geometry.ExifOrientation(o)),
	}
}
