package tracking

import (
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
)

type Size struct {
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

func (s Size) Geometry() geometry.Size {
	return geometry.Size{Width: s.Width, Height: s.Height}
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

func (r Rect) Geometry() geometry.Rect {
	return geometry.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

type VideoBoxRequest struct {
	Display  Size `json:"display"`
	Aperture Size `json:"aperture"`
}

type FaceRectRequest struct {
	Face     Rect   `json:"face"`
	Aperture Size   `json:"aperture"`
	Display  Size   `json:"display"`
	VideoBox *Rect  `json:"video_box,omitempty"`
	Camera   string `json:"camera" validate:"omitempty,oneof=front back"`
}

type OrientationResponse struct {
	Device string `json:"device"`
	Code   int    `json:"code"`
}

// StreamConfig is sent as a text message on the capture socket. Omitted
// aperture means the frame size reported by the detector is used.
type StreamConfig struct {
	Display     Size   `json:"display"`
	Aperture    *Size  `json:"aperture,omitempty"`
	Orientation string `json:"orientation" validate:"omitempty,max=32"`
	Camera      string `json:"camera" validate:"omitempty,oneof=front back"`
}

type FrameForm struct {
	DisplayWidth  float64 `form:"display_width" validate:"gt=0"`
	DisplayHeight float64 `form:"display_height" validate:"gt=0"`
	Orientation   string  `form:"orientation" validate:"omitempty,max=32"`
	Camera        string  `form:"camera" validate:"omitempty,oneof=front back"`
}

// FrameSettings is the geometry a stream's frames are interpreted with.
type FrameSettings struct {
	Display     geometry.Size
	Aperture    geometry.Size
	Orientation geometry.DeviceOrientation
	Camera      entity.CameraPosition
}

func (c StreamConfig) Settings() FrameSettings {
	s := FrameSettings{
		Display:     c.Display.Geometry(),
		Orientation: geometry.ParseDeviceOrientation(c.Orientation),
		Camera:      ParseCamera(c.Camera),
	}
	if c.Aperture != nil {
		s.Aperture = c.Aperture.Geometry()
	}
	return s
}

func (f FrameForm) Settings() FrameSettings {
	return FrameSettings{
		Display:     geometry.Size{Width: f.DisplayWidth, Height: f.DisplayHeight},
		Orientation: geometry.ParseDeviceOrientation(f.Orientation),
		Camera:      ParseCamera(f.Camera),
	}
}

func ParseCamera(s string) entity.CameraPosition {
	if s == string(entity.CameraBack) {
		return entity.CameraBack
	}
	return entity.CameraFront
}

type ErrorMessage struct {
	StreamID string `json:"stream_id,omitempty"`
	Seq      uint64 `json:"seq,omitempty"`
	Error    string `json:"error"`
}
