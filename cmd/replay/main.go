package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var opts replayOptions

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run a directory of captured frames through face tracking and print overlay updates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReplay(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVarP(&opts.InputDir, "input", "i", "", "Directory of JPEG, PNG or WebP frames")
	rootCmd.Flags().StringVarP(&opts.Display, "display", "d", "375x667", "Display size as WIDTHxHEIGHT")
	rootCmd.Flags().StringVarP(&opts.Aperture, "aperture", "a", "", "Clean aperture as WIDTHxHEIGHT (default: each frame's size)")
	rootCmd.Flags().StringVarP(&opts.Orientation, "orientation", "o", "", "Device orientation (default: read from EXIF)")
	rootCmd.Flags().StringVarP(&opts.Camera, "camera", "c", "front", "Camera position: front or back")
	rootCmd.Flags().StringVar(&opts.Cascade, "cascade", os.Getenv("PIGO_CASCADE_PATH"), "Path to the pigo facefinder cascade")
	rootCmd.Flags().Float64Var(&opts.MinQuality, "min-quality", 5, "Minimum pigo detection quality")
	rootCmd.Flags().BoolVar(&opts.SwapAxes, "swap-axes", true, "Sensor axes are rotated against the display")
	rootCmd.Flags().BoolVar(&opts.Progress, "progress", true, "Show a progress bar on stderr")

	_ = rootCmd.MarkFlagRequired("input")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
