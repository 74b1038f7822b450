package geometry

import "fmt"

// ComputeVideoBox returns the rectangle the camera image covers inside a
// display surface of the given size. The aperture is stored in the sensor's
// native axes, so its effective aspect ratio is aperture.Height/aperture.Width.
// The image is fitted, never stretched, and centered on both axes.
func ComputeVideoBox(display, aperture Size) (Rect, error) {
	if aperture.Degenerate() {
		return Rect{}, fmt.Errorf("video box: aperture %s: %w", aperture, ErrDegenerateGeometry)
	}
	if display.Height <= 0 {
		return Rect{}, fmt.Errorf("video box: display %s: %w", display, ErrDegenerateGeometry)
	}

	apertureRatio := aperture.Height / aperture.Width
	displayRatio := display.Width / display.Height

	var size Size
	if displayRatio > apertureRatio {
		size.Width = display.Width
		size.Height = aperture.Width * (display.Width / aperture.Height)
	} else {
		size.Width = aperture.Height * (display.Height / aperture.Width)
		size.Height = display.Height
	}

	box := Rect{Width: size.Width, Height: size.Height}

	// letterbox gap when the image is smaller, overscan amount when larger
	if size.Width < display.Width {
		box.X = (display.Width - size.Width) / 2.0
	} else {
		box.X = (size.Width - display.Width) / 2.0
	}

	if size.Height < display.Height {
		box.Y = (display.Height - size.Height) / 2.0
	} else {
		box.Y = (size.Height - display.Height) / 2.0
	}

	return box, nil
}
