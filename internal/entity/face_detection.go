package entity

import (
	"FaceTracking/internal/geometry"
	"fmt"
	"time"
)

type FaceFeature struct {
	BoundingBox    geometry.Rect `json:"bounding_box"`
	HasSmile       bool          `json:"has_smile"`
	LeftEyeClosed  bool          `json:"left_eye_closed"`
	RightEyeClosed bool          `json:"right_eye_closed"`
	Score          float64       `json:"score,omitempty"`
}

// Label is the overlay text shown next to a face.
func (f FaceFeature) Label() string {
	return fmt.Sprintf("has smile: %t\nhas closed left eye: %t\nhas closed right eye: %t",
		f.HasSmile, f.LeftEyeClosed, f.RightEyeClosed)
}

type DetectionResult struct {
	Faces     []FaceFeature `json:"faces"`
	ImageSize geometry.Size `json:"image_size"`
}

type CameraPosition string

const (
	CameraFront CameraPosition = "front"
	CameraBack  CameraPosition = "back"
)

// Frame is one captured image and the geometry it was captured under.
// Data must not be modified once the frame is queued.
type Frame struct {
	StreamID    string
	Seq         uint64
	Data        []byte
	Display     geometry.Size
	Aperture    geometry.Size
	Orientation geometry.DeviceOrientation
	Camera      CameraPosition
	ReceivedAt  time.Time
}

type FaceOverlay struct {
	Frame          geometry.Rect `json:"frame"`
	Label          string        `json:"label"`
	HasSmile       bool          `json:"has_smile"`
	LeftEyeClosed  bool          `json:"left_eye_closed"`
	RightEyeClosed bool          `json:"right_eye_closed"`
}

type OverlayUpdate struct {
	StreamID string        `json:"stream_id"`
	Seq      uint64        `json:"seq"`
	Visible  bool          `json:"visible"`
	Opacity  float64       `json:"opacity"`
	Faces    []FaceOverlay `json:"faces"`
	VideoBox geometry.Rect `json:"video_box"`
	Detector string        `json:"detector,omitempty"`
	Dropped  uint64        `json:"dropped"`
}

// HiddenOverlay is the update for a frame without faces.
func HiddenOverlay(streamID string, seq uint64) *OverlayUpdate {
	return &OverlayUpdate{
		StreamID: streamID,
		Seq:      seq,
		Visible:  false,
		Opacity:  0,
		Faces:    []FaceOverlay{},
	}
}
