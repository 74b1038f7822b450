package tracking

import (
	"FaceTracking/pkg/response"
	"net/http"
)

var (
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrBadRequest          = response.NewError(http.StatusBadRequest, "bad request")
	ErrInvalidFrame        = response.NewError(http.StatusBadRequest, "invalid frame")
	ErrStreamNotFound      = response.NewError(http.StatusNotFound, "stream not found")
	ErrStreamNotConfigured = response.NewError(http.StatusConflict, "stream display not configured")
	ErrDegenerateGeometry  = response.NewError(http.StatusUnprocessableEntity, "degenerate geometry")
	ErrDetectorUnavailable = response.NewError(http.StatusServiceUnavailable, "face detector unavailable")
)
