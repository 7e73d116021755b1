package detection

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/edge-overlay/internal/geometry"
)

// Oracle extracts raw line segments from a frame.
//
// Implementations must return segments in frame pixel coordinates and may
// return none. A nil error with an empty slice is a legitimate "no lines"
// answer, not a failure.
type Oracle interface {
	Detect(ctx context.Context, frame image.Image, p Params) ([]geometry.Segment, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, frame image.Image, p Params) ([]geometry.Segment, error)

// Detect calls f.
func (f OracleFunc) Detect(ctx context.Context, frame image.Image, p Params) ([]geometry.Segment, error) {
	return f(ctx, frame, p)
}

// Params configures edge detection and line voting. The values are passed
// through to the oracle unchanged.
type Params struct {
	// AdjacentThreshold is the low Canny hysteresis threshold: gradient
	// magnitudes above it are kept when connected to a strong edge.
	AdjacentThreshold float64 `json:"adjacent_threshold"`

	// FullThreshold is the high Canny hysteresis threshold: gradient
	// magnitudes above it are always edges.
	FullThreshold float64 `json:"full_threshold"`

	// RhoResolution is the distance resolution of the accumulator in pixels.
	RhoResolution float64 `json:"rho_resolution"`

	// ThetaResolutionDeg is the angle resolution of the accumulator in degrees.
	ThetaResolutionDeg float64 `json:"theta_resolution_deg"`

	// MinVotes is the accumulator threshold a line needs before it is traced.
	MinVotes int `json:"min_votes"`

	// MinLineLength rejects traced segments shorter than this on both axes.
	MinLineLength int `json:"min_line_length"`

	// MaxLineGap is the largest run of missing edge pixels bridged while
	// tracing a segment.
	MaxLineGap int `json:"max_line_gap"`

	// BlurRadius applies a Gaussian blur before edge detection when > 0.
	BlurRadius float64 `json:"blur_radius"`

	// MaxLines caps the number of segments per frame; 0 means unlimited.
	MaxLines int `json:"max_lines"`

	// Seed drives the random point order of the probabilistic transform so
	// identical frames yield identical segments.
	Seed uint64 `json:"seed"`
}

// DefaultParams returns the thresholds the overlay has always used:
// Canny 10/50, one pixel by one degree, 100 votes, 20 pixel minimum, no gap.
func DefaultParams() Params {
	return Params{
		AdjacentThreshold:  10,
		FullThreshold:      50,
		RhoResolution:      1,
		ThetaResolutionDeg: 1,
		MinVotes:           100,
		MinLineLength:      20,
		MaxLineGap:         0,
		Seed:               1,
	}
}

// Validate rejects parameter sets no oracle can run with.
func (p Params) Validate() error {
	switch {
	case p.AdjacentThreshold < 0 || p.FullThreshold < 0:
		return fmt.Errorf("edge thresholds must be >= 0, got %v/%v", p.AdjacentThreshold, p.FullThreshold)
	case !(p.RhoResolution > 0):
		return fmt.Errorf("rho resolution must be > 0, got %v", p.RhoResolution)
	case !(p.ThetaResolutionDeg > 0) || p.ThetaResolutionDeg > 180:
		return fmt.Errorf("theta resolution must be in (0, 180], got %v", p.ThetaResolutionDeg)
	case p.MinVotes < 1:
		return fmt.Errorf("min votes must be >= 1, got %d", p.MinVotes)
	case p.MinLineLength < 0 || p.MaxLineGap < 0 || p.MaxLines < 0:
		return fmt.Errorf("line length, gap and max lines must be >= 0")
	case p.BlurRadius < 0:
		return fmt.Errorf("blur radius must be >= 0, got %v", p.BlurRadius)
	}
	return nil
}
