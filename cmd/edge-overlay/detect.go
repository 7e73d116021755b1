package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/edge-overlay/internal/capture"
	"github.com/ironsheep/edge-overlay/internal/detection"
	"github.com/ironsheep/edge-overlay/internal/pipeline"
)

func detectCmd() *cobra.Command {
	var (
		displayWidth  int
		displayHeight int
		budget        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect lines in a still image and print them as JSON",
		Long: `Runs one tick of the pipeline with the image as the captured frame and
prints the resulting snapshot. With --display-width and --display-height the
segments are scaled into that resolution; otherwise they stay in image pixels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if (displayWidth == 0) != (displayHeight == 0) {
				return fmt.Errorf("--display-width and --display-height must be given together")
			}

			src, err := capture.NewFiles(args)
			if err != nil {
				return err
			}
			mode, err := cfg.Mode()
			if err != nil {
				return err
			}

			pc := pipeline.Config{
				Source:     src,
				Oracle:     detection.Default(),
				Params:     cfg.Params(),
				Thresholds: cfg.Thresholds(),
				FilterMode: mode,
				Budget:     budget,
			}
			if displayWidth != 0 {
				pc.Display = pipeline.FixedDisplay{Width: displayWidth, Height: displayHeight}
			}

			snap, err := pipeline.Once(cmd.Context(), pc)
			if err != nil {
				return err
			}
			snap.FPS = 0

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}

	cmd.Flags().IntVar(&displayWidth, "display-width", 0, "display width to scale segments into")
	cmd.Flags().IntVar(&displayHeight, "display-height", 0, "display height to scale segments into")
	cmd.Flags().DurationVar(&budget, "budget", 30*time.Second, "time allowed for capture and detection")
	return cmd
}
