package utils

import (
	"FaceTracking/internal/geometry"
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ReadFile(file *multipart.FileHeader) ([]byte, error)
	ImageSize(frame []byte) (geometry.Size, error)
	FrameOrientation(frame []byte) (geometry.OrientationCode, bool)
}

var ErrEmptyFrame = errors.New("empty frame")

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: 5 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}

	if file.Size > u.maxFileSize {
		return errors.New("file size exceeds limit")
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return errors.New("uploaded file is not an image")
	}

	return nil
}

func (u *utils) ReadFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// ImageSize reads only the header of an encoded frame (JPEG, PNG or WebP).
func (u *utils) ImageSize(frame []byte) (geometry.Size, error) {
	if len(frame) == 0 {
		return geometry.Size{}, ErrEmptyFrame
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return geometry.Size{}, fmt.Errorf("decode frame header: %w", err)
	}

	return geometry.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// FrameOrientation returns the EXIF orientation tag of a JPEG frame, if any.
func (u *utils) FrameOrientation(frame []byte) (geometry.OrientationCode, bool) {
	x, err := exif.Decode(bytes.NewReader(frame))
	if err != nil {
		return 0, false
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0, false
	}

	code, err := tag.Int(0)
	if err != nil || code < 1 || code > 8 {
		return 0, false
	}

	return geometry.OrientationCode(code), true
}
