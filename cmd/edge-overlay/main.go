// edge-overlay captures a display, finds straight edges on it and draws them
// back as a transparent overlay. It can also serve the live overlay state to
// MCP clients over stdin/stdout.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/ironsheep/edge-overlay/internal/config"
	"github.com/ironsheep/edge-overlay/internal/monitoring"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath string
	debugLog   bool
	angleDeg   float64
	distance   float64
	minVotes   int
)

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "edge-overlay",
		Short: "Highlight straight edges on screen",
		Long: `edge-overlay grabs a display many times a second, detects straight line
segments in each frame, drops near-duplicates and draws what remains over
the screen together with a frame rate label.

Commands:
  run              Run the live overlay
  detect <image>   Detect lines in a still image and print them as JSON
  serve            Serve overlay state over MCP (stdin/stdout)`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file (see "+config.ExampleConfigPath+")")
	root.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug logging")
	root.PersistentFlags().Float64Var(&angleDeg, "angle-threshold", 0, "duplicate angle threshold in degrees (overrides config)")
	root.PersistentFlags().Float64Var(&distance, "distance-threshold", 0, "duplicate distance threshold in pixels (overrides config)")
	root.PersistentFlags().IntVar(&minVotes, "min-votes", 0, "Hough vote threshold (overrides config)")

	root.AddCommand(
		runCmd(),
		detectCmd(),
		serveCmd(),
		versionCmd(),
	)
	return root
}

// setupLogging sends log output to stderr, which keeps stdout free for the
// MCP protocol and JSON results.
func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := debugLog || os.Getenv("EDGE_OVERLAY_LOG_LEVEL") == "debug"
	monitoring.SetDebug(debug)
	if debug {
		gg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		log.Printf("edge-overlay %s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}
}

// loadConfig reads --config (or the defaults) and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("angle-threshold") {
		cfg.AngleThresholdDeg = angleDeg
	}
	if flags.Changed("distance-threshold") {
		cfg.DistanceThreshold = distance
	}
	if flags.Changed("min-votes") {
		cfg.MinVotes = minVotes
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "edge-overlay %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}
