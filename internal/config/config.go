// Package config holds every tunable of the overlay and loads them from a
// JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/edge-overlay/internal/dedup"
	"github.com/ironsheep/edge-overlay/internal/detection"
	"github.com/ironsheep/edge-overlay/internal/render"
)

// ExampleConfigPath is the checked-in example holding the default values.
const ExampleConfigPath = "config/edge-overlay.example.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Filter mode names accepted by FilterMode.
const (
	FilterAuto     = "auto"
	FilterLinear   = "linear"
	FilterBucketed = "bucketed"
)

// Config is the full set of knobs. The JSON schema is flat so a partial file
// only names what it changes.
type Config struct {
	// Duplicate filter
	AngleThresholdDeg float64 `json:"angle_threshold_deg"`
	DistanceThreshold float64 `json:"distance_threshold"`
	FilterMode        string  `json:"filter_mode"`

	// Detection oracle, passed through unchanged
	AdjacentThreshold  float64 `json:"adjacent_threshold"`
	FullThreshold      float64 `json:"full_threshold"`
	MinVotes           int     `json:"min_votes"`
	MinLineLength      int     `json:"min_line_length"`
	MaxLineGap         int     `json:"max_line_gap"`
	RhoResolution      float64 `json:"rho_resolution"`
	ThetaResolutionDeg float64 `json:"theta_resolution_deg"`
	BlurRadius         float64 `json:"blur_radius"`
	MaxLines           int     `json:"max_lines"`
	Seed               uint64  `json:"seed"`

	// Timing
	TickRate   float64 `json:"tick_rate"`
	TickBudget string  `json:"tick_budget"` // duration string like "250ms"; empty is pipeline.DefaultBudget
	RenderRate float64 `json:"render_rate"`

	// Capture and display
	CaptureDisplay int     `json:"capture_display"`
	CaptureRegion  Region  `json:"capture_region"` // zero captures the whole display
	CaptureScale   float64 `json:"capture_scale"`
	DisplayWidth   int     `json:"display_width"` // 0 follows the capture resolution
	DisplayHeight  int     `json:"display_height"`
	OutputDir      string  `json:"output_dir"`
	NumberFrames   bool    `json:"number_frames"`

	// Style
	LineColor   string  `json:"line_color"`
	LineAlpha   float64 `json:"line_alpha"`
	LineWidth   float64 `json:"line_width"`
	BorderColor string  `json:"border_color"`
	BorderAlpha float64 `json:"border_alpha"`
	BorderWidth float64 `json:"border_width"`
	FPSColor    string  `json:"fps_color"`
	FPSAlpha    float64 `json:"fps_alpha"`
	FPSFontSize float64 `json:"fps_font_size"`
}

// Region is a rectangle in display pixels.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether no region is set.
func (r Region) IsZero() bool {
	return r == Region{}
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Default returns the stock configuration.
func Default() *Config {
	th := dedup.DefaultThresholds()
	p := detection.DefaultParams()
	s := render.DefaultStyle()
	return &Config{
		AngleThresholdDeg: th.AngleDeg,
		DistanceThreshold: th.Distance,
		FilterMode:        FilterAuto,

		AdjacentThreshold:  p.AdjacentThreshold,
		FullThreshold:      p.FullThreshold,
		MinVotes:           p.MinVotes,
		MinLineLength:      p.MinLineLength,
		MaxLineGap:         p.MaxLineGap,
		RhoResolution:      p.RhoResolution,
		ThetaResolutionDeg: p.ThetaResolutionDeg,
		BlurRadius:         p.BlurRadius,
		MaxLines:           p.MaxLines,
		Seed:               p.Seed,

		TickRate:   60,
		RenderRate: render.DefaultRenderRate,

		CaptureScale: 1,

		LineColor:   s.Line.Hex,
		LineAlpha:   s.Line.Alpha,
		LineWidth:   s.LineWidth,
		BorderColor: s.Border.Hex,
		BorderAlpha: s.Border.Alpha,
		BorderWidth: s.BorderWidth,
		FPSColor:    s.FPS.Hex,
		FPSAlpha:    s.FPS.Alpha,
		FPSFontSize: s.FontSize,
	}
}

// Load reads a JSON config file over Default. The file must have a .json
// extension and be at most 1MB. Fields the file omits keep their defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.AngleThresholdDeg < 0 || c.AngleThresholdDeg > 180 {
		return fmt.Errorf("angle_threshold_deg must be between 0 and 180, got %v", c.AngleThresholdDeg)
	}
	if c.DistanceThreshold < 0 {
		return fmt.Errorf("distance_threshold must not be negative, got %v", c.DistanceThreshold)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if !(c.TickRate > 0) || c.TickRate > 1000 {
		return fmt.Errorf("tick_rate must be in (0, 1000], got %v", c.TickRate)
	}
	if !(c.RenderRate > 0) || c.RenderRate > 1000 {
		return fmt.Errorf("render_rate must be in (0, 1000], got %v", c.RenderRate)
	}
	if _, err := c.Budget(); err != nil {
		return err
	}
	if c.CaptureDisplay < 0 {
		return fmt.Errorf("capture_display must not be negative, got %d", c.CaptureDisplay)
	}
	if r := c.CaptureRegion; !r.IsZero() && (r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0) {
		return fmt.Errorf("capture_region needs a non-negative origin and a positive size, got %+v", r)
	}
	if !(c.CaptureScale > 0) || c.CaptureScale > 1 {
		return fmt.Errorf("capture_scale must be in (0, 1], got %v", c.CaptureScale)
	}
	if c.DisplayWidth < 0 || c.DisplayHeight < 0 || (c.DisplayWidth == 0) != (c.DisplayHeight == 0) {
		return fmt.Errorf("display_width and display_height must both be positive or both 0, got %dx%d",
			c.DisplayWidth, c.DisplayHeight)
	}
	if err := c.Style().Validate(); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	return nil
}

// Thresholds returns the duplicate filter thresholds.
func (c *Config) Thresholds() dedup.Thresholds {
	return dedup.Thresholds{AngleDeg: c.AngleThresholdDeg, Distance: c.DistanceThreshold}
}

// Mode maps filter_mode to a dedup.Mode.
func (c *Config) Mode() (dedup.Mode, error) {
	switch c.FilterMode {
	case "", FilterAuto:
		return dedup.ModeAuto, nil
	case FilterLinear:
		return dedup.ModeLinear, nil
	case FilterBucketed:
		return dedup.ModeBucketed, nil
	default:
		return dedup.ModeAuto, fmt.Errorf("filter_mode must be %q, %q or %q, got %q",
			FilterAuto, FilterLinear, FilterBucketed, c.FilterMode)
	}
}

// Params returns the detection parameters.
func (c *Config) Params() detection.Params {
	return detection.Params{
		AdjacentThreshold:  c.AdjacentThreshold,
		FullThreshold:      c.FullThreshold,
		RhoResolution:      c.RhoResolution,
		ThetaResolutionDeg: c.ThetaResolutionDeg,
		MinVotes:           c.MinVotes,
		MinLineLength:      c.MinLineLength,
		MaxLineGap:         c.MaxLineGap,
		BlurRadius:         c.BlurRadius,
		MaxLines:           c.MaxLines,
		Seed:               c.Seed,
	}
}

// Budget parses tick_budget. Zero leaves the pipeline default.
func (c *Config) Budget() (time.Duration, error) {
	if c.TickBudget == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TickBudget)
	if err != nil {
		return 0, fmt.Errorf("invalid tick_budget '%s': %w", c.TickBudget, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick_budget must be positive, got %v", d)
	}
	return d, nil
}

// Style returns the renderer style.
func (c *Config) Style() render.Style {
	return render.Style{
		Line:        render.Paint{Hex: c.LineColor, Alpha: c.LineAlpha},
		LineWidth:   c.LineWidth,
		Border:      render.Paint{Hex: c.BorderColor, Alpha: c.BorderAlpha},
		BorderWidth: c.BorderWidth,
		FPS:         render.Paint{Hex: c.FPSColor, Alpha: c.FPSAlpha},
		FontSize:    c.FPSFontSize,
	}
}
