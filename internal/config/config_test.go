package config

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/edge-overlay/internal/dedup"
	"github.com/ironsheep/edge-overlay/internal/detection"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, dedup.Thresholds{AngleDeg: 5, Distance: 10}, cfg.Thresholds())
	assert.Equal(t, detection.DefaultParams(), cfg.Params())
	assert.Equal(t, 60.0, cfg.TickRate)

	mode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, dedup.ModeAuto, mode)

	budget, err := cfg.Budget()
	require.NoError(t, err)
	assert.Zero(t, budget)
}

func TestLoad_ExampleMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", ExampleConfigPath))
	require.NoError(t, err)

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("example config drifted from defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"distance_threshold": 25, "tick_budget": "12ms", "filter_mode": "bucketed"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.DistanceThreshold)
	assert.Equal(t, 5.0, cfg.AngleThresholdDeg)
	assert.Equal(t, 100, cfg.MinVotes)

	budget, err := cfg.Budget()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Millisecond, budget)

	mode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, dedup.ModeBucketed, mode)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "cfg.yaml", `{}`, ".json extension"},
		{"bad json", "cfg.json", `{"tick_rate": `, "parse"},
		{"invalid value", "cfg.json", `{"tick_rate": 0}`, "tick_rate"},
		{"bad budget", "cfg.json", `{"tick_budget": "soon"}`, "tick_budget"},
		{"bad colour", "cfg.json", `{"line_color": "lime"}`, "style"},
		{"bad mode", "cfg.json", `{"filter_mode": "quadtree"}`, "filter_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoad_TooLarge(t *testing.T) {
	body := `{"output_dir": "` + strings.Repeat("x", maxFileSize) + `"}`
	_, err := Load(writeConfig(t, "big.json", body))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative angle", func(c *Config) { c.AngleThresholdDeg = -1 }},
		{"angle over 180", func(c *Config) { c.AngleThresholdDeg = 181 }},
		{"negative distance", func(c *Config) { c.DistanceThreshold = -0.1 }},
		{"zero votes", func(c *Config) { c.MinVotes = 0 }},
		{"render rate", func(c *Config) { c.RenderRate = 0 }},
		{"negative budget", func(c *Config) { c.TickBudget = "-5ms" }},
		{"negative display index", func(c *Config) { c.CaptureDisplay = -1 }},
		{"region without size", func(c *Config) { c.CaptureRegion = Region{X: 10, Y: 10} }},
		{"region negative origin", func(c *Config) { c.CaptureRegion = Region{X: -1, Width: 10, Height: 10} }},
		{"capture scale above one", func(c *Config) { c.CaptureScale = 2 }},
		{"half display size", func(c *Config) { c.DisplayWidth = 800 }},
		{"zero font", func(c *Config) { c.FPSFontSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_CaptureRegion(t *testing.T) {
	path := writeConfig(t, "region.json", `{"capture_region": {"x": 100, "y": 50, "width": 640, "height": 360}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.CaptureRegion.IsZero())
	assert.Equal(t, image.Rect(100, 50, 740, 410), cfg.CaptureRegion.Rect())
	assert.True(t, Default().CaptureRegion.IsZero())
}

func TestStyle(t *testing.T) {
	cfg := Default()
	cfg.LineColor = "#123456"
	cfg.BorderWidth = 0

	s := cfg.Style()
	assert.Equal(t, "#123456", s.Line.Hex)
	assert.Zero(t, s.BorderWidth)
	assert.NoError(t, s.Validate())
}
