package geometry

import "strings"

// DeviceOrientation is the physical orientation reported by the platform sensor.
type DeviceOrientation int

const (
	Unknown DeviceOrientation = iota
	Portrait
	PortraitUpsideDown
	LandscapeLeft
	LandscapeRight
	FaceUp
	FaceDown
)

var deviceOrientationNames = map[DeviceOrientation]string{
	Unknown:            "unknown",
	Portrait:           "portrait",
	PortraitUpsideDown: "portraitUpsideDown",
	LandscapeLeft:      "landscapeLeft",
	LandscapeRight:     "landscapeRight",
	FaceUp:             "faceUp",
	FaceDown:           "faceDown",
}

func (o DeviceOrientation) String() string {
	if name, ok := deviceOrientationNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseDeviceOrientation is case-insensitive; anything unrecognised is Unknown.
func ParseDeviceOrientation(s string) DeviceOrientation {
	for o, name := range deviceOrientationNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return o
		}
	}
	return Unknown
}

// OrientationCode is the EXIF-style tag a detector uses to interpret an image
// before running detection.
type OrientationCode int

const (
	OrientationUp         OrientationCode = 1
	OrientationDown       OrientationCode = 3
	OrientationRightTop   OrientationCode = 6
	OrientationLeftBottom OrientationCode = 8
)

// ExifOrientation maps a device orientation to the detector's orientation code.
func ExifOrientation(o DeviceOrientation) OrientationCode {
	switch o {
	case PortraitUpsideDown:
		return OrientationLeftBottom
	case LandscapeLeft:
		return OrientationDown
	case LandscapeRight:
		return OrientationUp
	default:
		return OrientationRightTop
	}
}

// DeviceOrientationFor is the inverse of ExifOrientation for the four codes it
// produces. Other codes yield Portrait.
func DeviceOrientationFor(c OrientationCode) DeviceOrientation {
	switch c {
	case OrientationLeftBottom:
		return PortraitUpsideDown
	case OrientationDown:
		return LandscapeLeft
	case OrientationUp:
		return LandscapeRight
	default:
		return Portrait
	}
}

// Oriented returns the size of a raw image of size raw once the code's
// rotation has been applied.
func (c OrientationCode) Oriented(raw Size) Size {
	switch c {
	case OrientationRightTop, OrientationLeftBottom:
		return raw.Rotated()
	default:
		return raw
	}
}

// UnorientRect maps r, found in the orientation-corrected image of size
// oriented, back onto the raw sensor image. Codes other than 1, 3, 6 and 8
// are treated as 1.
func (c OrientationCode) UnorientRect(r Rect, oriented Size) Rect {
	switch c {
	case OrientationDown:
		return Rect{
			X:      oriented.Width - r.X - r.Width,
			Y:      oriented.Height - r.Y - r.Height,
			Width:  r.Width,
			Height: r.Height,
		}
	case OrientationRightTop:
		// raw was turned 90° clockwise
		return Rect{
			X:      r.Y,
			Y:      oriented.Width - r.X - r.Width,
			Width:  r.Height,
			Height: r.Width,
		}
	case OrientationLeftBottom:
		// raw was turned 90° counter-clockwise
		return Rect{
			X:      oriented.Height - r.Y - r.Height,
			Y:      r.X,
			Width:  r.Height,
			Height: r.Width,
		}
	default:
		return r
	}
}
