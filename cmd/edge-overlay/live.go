package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/edge-overlay/internal/capture"
	"github.com/ironsheep/edge-overlay/internal/config"
	"github.com/ironsheep/edge-overlay/internal/detection"
	"github.com/ironsheep/edge-overlay/internal/metrics"
	"github.com/ironsheep/edge-overlay/internal/monitoring"
	"github.com/ironsheep/edge-overlay/internal/pipeline"
	"github.com/ironsheep/edge-overlay/internal/render"
	"github.com/ironsheep/edge-overlay/internal/server"
)

// liveStack is a live pipeline with its overlay and statistics.
type liveStack struct {
	pipe     *pipeline.Pipeline
	overlay  *render.Overlay
	stats    *metrics.Recorder
	rate     float64
	rendered bool // the overlay has a sink to render into
}

// liveSource builds the frame source for cfg and the overlay size. Replayed
// images loop in place of the screen. The overlay follows display_width and
// display_height when set, then the capture region, then the first replayed
// image or the display.
func liveSource(cfg *config.Config, replay []string) (capture.Source, int, int, error) {
	var (
		src           capture.Source
		width, height int
	)
	if len(replay) > 0 {
		cache := capture.NewImageCache()
		first, err := cache.Load(replay[0])
		if err != nil {
			return nil, 0, 0, err
		}
		width, height = first.Bounds().Dx(), first.Bounds().Dy()
		files, err := capture.NewFiles(replay, capture.WithLoop(), capture.WithCache(cache))
		if err != nil {
			return nil, 0, 0, err
		}
		src = files
	} else {
		src = capture.NewScreen(cfg.CaptureDisplay, nil)
	}

	if !cfg.CaptureRegion.IsZero() {
		cropped, err := capture.NewCropped(src, cfg.CaptureRegion.Rect())
		if err != nil {
			return nil, 0, 0, err
		}
		src = cropped
		width, height = cfg.CaptureRegion.Width, cfg.CaptureRegion.Height
	}

	if cfg.CaptureScale < 1 {
		scaled, err := capture.NewScaled(src, cfg.CaptureScale)
		if err != nil {
			return nil, 0, 0, err
		}
		src = scaled
	}

	switch {
	case cfg.DisplayWidth != 0:
		width, height = cfg.DisplayWidth, cfg.DisplayHeight
	case width == 0:
		var err error
		if width, height, err = capture.DisplaySize(cfg.CaptureDisplay); err != nil {
			return nil, 0, 0, fmt.Errorf("cannot size the overlay (set display_width and display_height): %w", err)
		}
	}
	return src, width, height, nil
}

func newLiveStack(cfg *config.Config, replay []string) (*liveStack, error) {
	src, width, height, err := liveSource(cfg, replay)
	if err != nil {
		return nil, err
	}

	var sink render.Sink
	if cfg.OutputDir != "" {
		png, err := render.NewPNGSink(cfg.OutputDir, cfg.NumberFrames)
		if err != nil {
			return nil, err
		}
		sink = png
	}

	overlay, err := render.New(width, height, cfg.Style(), sink)
	if err != nil {
		return nil, err
	}

	budget, err := cfg.Budget()
	if err != nil {
		overlay.Close()
		return nil, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		overlay.Close()
		return nil, err
	}

	stats := metrics.NewRecorder(metrics.DefaultWindow)
	pipe, err := pipeline.New(pipeline.Config{
		Source:     src,
		Oracle:     detection.Default(),
		Display:    overlay,
		Params:     cfg.Params(),
		Thresholds: cfg.Thresholds(),
		FilterMode: mode,
		TickRate:   cfg.TickRate,
		Budget:     budget,
		Observer:   stats,
	})
	if err != nil {
		overlay.Close()
		return nil, err
	}

	return &liveStack{
		pipe:     pipe,
		overlay:  overlay,
		stats:    stats,
		rate:     cfg.RenderRate,
		rendered: sink != nil,
	}, nil
}

// start runs the pipeline and, when there is somewhere to render, the
// overlay loop. Both stop when ctx is done; wait returns once they have.
func (l *liveStack) start(ctx context.Context) (wait func() error) {
	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Go(func() {
		if err := l.pipe.Run(ctx); err != nil {
			errs <- fmt.Errorf("pipeline: %w", err)
		}
	})
	if l.rendered {
		wg.Go(func() {
			if err := l.overlay.Run(ctx, l.pipe, l.rate, nil); err != nil {
				errs <- fmt.Errorf("overlay: %w", err)
			}
		})
	}

	return func() error {
		wg.Wait()
		close(errs)
		var all []error
		for err := range errs {
			all = append(all, err)
		}
		return errors.Join(all...)
	}
}

func (l *liveStack) close() {
	sum := l.stats.Summary()
	monitoring.Logf("stopped after %d ticks (%d skipped), tick mean %.2fms, %.1f fps",
		sum.Ticks, sum.Skipped, sum.TickMeanMs, sum.MeanFPS)
	if err := l.overlay.Close(); err != nil {
		monitoring.Logf("overlay close: %v", err)
	}
}

func runCmd() *cobra.Command {
	var (
		statsPlot string
		replay    []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the live overlay",
		Long: `Runs the capture, detect and filter pipeline against a display and
renders the overlay as PNG files into output_dir.

Without output_dir nothing is drawn or shown: only the pipeline runs, which
is useful with --stats-plot to measure detection speed. Use serve to read
the lines from an MCP client instead.

--replay loops over image files in place of the screen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			live, err := newLiveStack(cfg, replay)
			if err != nil {
				return err
			}
			defer live.close()

			w, h := live.overlay.Size()
			monitoring.Logf("overlay %dx%d on display %d at %.0f Hz", w, h, cfg.CaptureDisplay, cfg.TickRate)
			if !live.rendered {
				monitoring.Logf("no output_dir configured; the overlay is not rendered, only the pipeline runs")
			}

			err = live.start(ctx)()
			if statsPlot != "" {
				period := float64(live.pipe.Period()) / float64(time.Millisecond)
				if perr := live.stats.SavePlot(statsPlot, period); perr != nil {
					monitoring.Logf("stats plot: %v", perr)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&statsPlot, "stats-plot", "", "write a tick duration chart to this file on exit (.png, .svg, .pdf)")
	cmd.Flags().StringSliceVar(&replay, "replay", nil, "loop over these image files instead of capturing the screen")
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		noLive bool
		replay []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve overlay state over MCP (stdin/stdout)",
		Long: `Speaks MCP over stdin/stdout. Unless --no-live is given a screen
pipeline runs in the background so overlay_snapshot and overlay_stats report
live state. The line tools work either way.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			opts := server.Options{Config: cfg, Version: Version}
			if !noLive {
				live, err := newLiveStack(cfg, replay)
				if err != nil {
					return fmt.Errorf("live overlay unavailable (use --no-live to serve without it): %w", err)
				}
				ctx, cancel := context.WithCancel(cmd.Context())
				wait := live.start(ctx)
				defer func() {
					cancel()
					if err := wait(); err != nil {
						monitoring.Logf("%v", err)
					}
					live.close()
				}()
				opts.Snapshots = live.pipe
				opts.Stats = live.stats
			}

			return server.New(opts).Run()
		},
	}

	cmd.Flags().BoolVar(&noLive, "no-live", false, "do not run a screen pipeline")
	cmd.Flags().StringSliceVar(&replay, "replay", nil, "loop over these image files instead of capturing the screen")
	return cmd
}
