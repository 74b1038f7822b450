package main

import (
	"FaceTracking/internal/api/tracking"
	trackingService "FaceTracking/internal/api/tracking/service"
	"FaceTracking/internal/entity"
	"FaceTracking/internal/geometry"
	"FaceTracking/pkg/detector"
	"FaceTracking/pkg/log"
	pigoPkg "FaceTracking/pkg/pigo"
	"FaceTracking/pkg/utils"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

const replayStreamID = "replay"

type replayOptions struct {
	InputDir    string
	Display     string
	Aperture    string
	Orientation string
	Camera      string
	Cascade     string
	MinQuality  float64
	SwapAxes    bool
	Progress    bool
}

func parseSize(s string) (geometry.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return geometry.Size{}, fmt.Errorf("size %q: want WIDTHxHEIGHT", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	if width < 0 || height < 0 {
		return geometry.Size{}, fmt.Errorf("size %q: negative dimension", s)
	}
	return geometry.Size{Width: width, Height: height}, nil
}

func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png", ".webp":
			frames = append(frames, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(frames)
	return frames, nil
}

func runReplay(ctx context.Context, opts replayOptions, out io.Writer) error {
	logger := log.NewLogger()

	cfg := pigoPkg.DefaultConfig()
	cfg.CascadePath = opts.Cascade
	cfg.MinQuality = float32(opts.MinQuality)

	det, err := pigoPkg.New(cfg, logger)
	if err != nil {
		return err
	}
	defer det.Close()

	return replay(ctx, det, opts, out, logger)
}

func replay(ctx context.Context, det detector.IFaceDetector, opts replayOptions, out io.Writer, logger *logrus.Logger) error {
	display, err := parseSize(opts.Display)
	if err != nil {
		return err
	}

	var aperture geometry.Size
	if opts.Aperture != "" {
		if aperture, err = parseSize(opts.Aperture); err != nil {
			return err
		}
	}

	frames, err := listFrames(opts.InputDir)
	if err != nil {
		return fmt.Errorf("list frames: %w", err)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames found in %s", opts.InputDir)
	}

	u := utils.New()
	svcCfg := trackingService.DefaultConfig()
	svcCfg.Mapper.SwapAxes = opts.SwapAxes
	svc := trackingService.NewTrackingService(logger, det, nil, u, svcCfg)

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(frames),
			progressbar.OptionSetDescription("Replaying frames"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
		defer bar.Finish()
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	camera := tracking.ParseCamera(opts.Camera)
	var skipped int

	for i, path := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		orientation := geometry.ParseDeviceOrientation(opts.Orientation)
		if opts.Orientation == "" {
			orientation = geometry.Portrait
			if code, ok := u.FrameOrientation(data); ok {
				orientation = geometry.DeviceOrientationFor(code)
			}
		}

		update, err := svc.ProcessFrame(ctx, entity.Frame{
			StreamID:    replayStreamID,
			Seq:         uint64(i + 1),
			Data:        data,
			Display:     display,
			Aperture:    aperture,
			Orientation: orientation,
			Camera:      camera,
			ReceivedAt:  time.Now(),
		})
		if err != nil {
			skipped++
			logger.WithField("file", filepath.Base(path)).Warnf("Frame skipped: %v", err)
		} else if err := enc.Encode(update); err != nil {
			return err
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	logger.WithFields(logrus.Fields{
		"frames":  len(frames),
		"skipped": skipped,
	}).Info("Replay finished")

	return nil
}
