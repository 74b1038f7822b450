package geometry

import "errors"

// ErrDegenerateGeometry is returned when a dimension the transform divides by is zero.
var ErrDegenerateGeometry = errors.New("degenerate geometry")
