package geometry

import "fmt"

// Size is a non-negative width/height pair in whatever pixel space the caller tracks.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an origin plus a size. Sensor-space and display-space rects share
// this type, so the caller must know which space a value lives in.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Rotated returns the size with width and height exchanged.
func (s Size) Rotated() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// Degenerate reports whether either dimension is zero or negative.
func (s Size) Degenerate() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}
