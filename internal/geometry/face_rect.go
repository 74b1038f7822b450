package geometry

import "fmt"

// Mapper converts face boxes from sensor-axis image space into display space.
//
// SwapAxes compensates for a sensor whose native axes are rotated 90° against
// the display's portrait convention. Mirror flips the result horizontally, as
// needed for a front-facing camera preview.
type Mapper struct {
	SwapAxes bool
	Mirror   bool
}

// DefaultMapper is a rotated sensor feeding a mirrored (front camera) preview.
var DefaultMapper = Mapper{SwapAxes: true, Mirror: true}

// MapFaceRect maps a face box with DefaultMapper.
func MapFaceRect(face Rect, aperture, display Size, videoBox Rect) (Rect, error) {
	return DefaultMapper.MapFaceRect(face, aperture, display, videoBox)
}

// VideoBox computes the video box for this mapper's sensor convention.
func (m Mapper) VideoBox(display, aperture Size) (Rect, error) {
	if !m.SwapAxes {
		// ComputeVideoBox expects rotated aperture axes
		return ComputeVideoBox(display, aperture.Rotated())
	}
	return ComputeVideoBox(display, aperture)
}

// MapFaceRect converts face, reported in sensor-axis image space, into a rect
// in display coordinates. videoBox must come from VideoBox for the same
// display and aperture.
func (m Mapper) MapFaceRect(face Rect, aperture, display Size, videoBox Rect) (Rect, error) {
	if aperture.Degenerate() {
		return Rect{}, fmt.Errorf("face rect: aperture %s: %w", aperture, ErrDegenerateGeometry)
	}

	rect := face
	widthScale := videoBox.Width / aperture.Width
	heightScale := videoBox.Height / aperture.Height
	if m.SwapAxes {
		rect = swapAxes(face)
		widthScale = videoBox.Width / aperture.Height
		heightScale = videoBox.Height / aperture.Width
	}

	rect = scale(rect, widthScale, heightScale)
	rect.Y += videoBox.Y

	if m.Mirror {
		return mirror(rect, display, videoBox), nil
	}
	return centerOnFace(rect, videoBox), nil
}

// MapFaces computes the video box once and maps every face box through it.
// The result is never nil: a frame without faces yields an empty slice.
func (m Mapper) MapFaces(display, aperture Size, faces []Rect) (Rect, []Rect, error) {
	videoBox, err := m.VideoBox(display, aperture)
	if err != nil {
		return Rect{}, nil, err
	}

	out := make([]Rect, 0, len(faces))
	for _, face := range faces {
		rect, err := m.MapFaceRect(face, aperture, display, videoBox)
		if err != nil {
			return Rect{}, nil, err
		}
		out = append(out, rect)
	}
	return videoBox, out, nil
}

func swapAxes(r Rect) Rect {
	return Rect{X: r.Y, Y: r.X, Width: r.Height, Height: r.Width}
}

func scale(r Rect, sx, sy float64) Rect {
	return Rect{
		X:      r.X * sx,
		Y:      r.Y * sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}
}

// mirror reflects the box across the display and centers it on the face's
// horizontal midpoint. x is offset by half of videoBox.X; y already carries
// the full videoBox.Y.
func mirror(r Rect, display Size, videoBox Rect) Rect {
	return Rect{
		X:      display.Width - r.X - r.Width/2.0 - videoBox.X/2.0,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}

// centerOnFace is mirror reflected back about the display width.
func centerOnFace(r Rect, videoBox Rect) Rect {
	return Rect{
		X:      r.X - r.Width/2.0 + videoBox.X/2.0,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
	}
}
