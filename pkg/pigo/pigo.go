package pigoPkg

import (
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/detector"
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
)

type Config struct {
	CascadePath  string
	MinQuality   float32
	MinSize      int
	MaxSize      int
	ShiftFactor  float64
	ScaleFactor  float64
	IoUThreshold float64
}

func DefaultConfig() Config {
	return Config{
		MinQuality:   5.0,
		MinSize:      20,
		MaxSize:      1000,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
	}
}

type pigoDetector struct {
	classifier *pigo.Pigo
	cfg        Config
	log        *logrus.Logger
}

func New(cfg Config, log *logrus.Logger) (detector.IFaceDetector, error) {
	cascade, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	return NewFromCascade(cascade, cfg, log)
}

func NewFromCascade(cascade []byte, cfg Config, log *logrus.Logger) (detector.IFaceDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	log.Info(fmt.Sprintf("Pigo face detector initialized (minSize: %d, minQuality: %.1f)", cfg.MinSize, cfg.MinQuality))

	return &pigoDetector{classifier: classifier, cfg: cfg, log: log}, nil
}

func (d *pigoDetector) Name() string {
	return detector.BackendPigo
}

func (d *pigoDetector) Ready() bool { return true }

func (d *pigoDetector) Close() {}

func (d *pigoDetector) Detect(ctx context.Context, frame []byte, code geometry.OrientationCode) (*entity.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", detector.ErrInvalidFrame, err)
	}

	raw := geometry.Size{Width: float64(img.Bounds().Dx()), Height: float64(img.Bounds().Dy())}
	upright := Orient(img, code)
	src := pigo.ImgToNRGBA(upright)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     d.cfg.MaxSize,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoUThreshold)

	result := &entity.DetectionResult{
		Faces:     facesFromDetections(dets, d.cfg.MinQuality, code, code.Oriented(raw)),
		ImageSize: raw,
	}

	d.log.Debug(fmt.Sprintf("Pigo detected %d face(s) out of %d candidates", len(result.Faces), len(dets)))

	return result, nil
}

// Orient turns a raw frame upright for its EXIF orientation code. imaging
// rotates counter-clockwise.
func Orient(img image.Image, code geometry.OrientationCode) image.Image {
	switch code {
	case geometry.OrientationRightTop:
		return imaging.Rotate270(img)
	case geometry.OrientationLeftBottom:
		return imaging.Rotate90(img)
	case geometry.OrientationDown:
		return imaging.Rotate180(img)
	default:
		return img
	}
}

// facesFromDetections converts pigo's centre/scale detections into boxes in
// the raw frame's coordinate space.
func facesFromDetections(dets []pigo.Detection, minQuality float32, code geometry.OrientationCode, oriented geometry.Size) []entity.FaceFeature {
	faces := make([]entity.FaceFeature, 0, len(dets))
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}

		half := float64(det.Scale) / 2
		box := geometry.Rect{
			X:      float64(det.Col) - half,
			Y:      float64(det.Row) - half,
			Width:  float64(det.Scale),
			Height: float64(det.Scale),
		}

		faces = append(faces, entity.FaceFeature{
			BoundingBox: code.UnorientRect(box, oriented),
			Score:       float64(det.Q),
		})
	}
	return faces
}
