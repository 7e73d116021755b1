// Package scale maps segments between raw detection space and display space.
package scale

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/edge-overlay/internal/geometry"
)

// ErrInvalidScale is returned when a scale factor is non-positive or not
// finite, which happens when a resolution report is malformed.
var ErrInvalidScale = errors.New("invalid scale")

// Factors holds independent horizontal and vertical scale factors.
//
// A raw coordinate x maps to display coordinate x / SX (and y / SY).
type Factors struct {
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
}

// NewFactors computes (rawWidth/displayWidth, rawHeight/displayHeight).
//
// A zero display dimension yields an infinite factor and a zero raw
// dimension yields a zero factor; both are rejected with ErrInvalidScale.
func NewFactors(rawWidth, rawHeight, displayWidth, displayHeight int) (Factors, error) {
	f := Factors{
		SX: float64(rawWidth) / float64(displayWidth),
		SY: float64(rawHeight) / float64(displayHeight),
	}
	if err := f.Validate(); err != nil {
		return Factors{}, fmt.Errorf("capture %dx%d to display %dx%d: %w",
			rawWidth, rawHeight, displayWidth, displayHeight, err)
	}
	return f, nil
}

// Identity returns factors that leave coordinates unchanged.
func Identity() Factors {
	return Factors{SX: 1, SY: 1}
}

// Validate checks that both factors are finite and strictly positive.
func (f Factors) Validate() error {
	if !valid(f.SX) || !valid(f.SY) {
		return fmt.Errorf("%w: sx=%v sy=%v", ErrInvalidScale, f.SX, f.SY)
	}
	return nil
}

// Inverse returns the factors that undo f.
func (f Factors) Inverse() Factors {
	return Factors{SX: 1 / f.SX, SY: 1 / f.SY}
}

func valid(v float64) bool {
	// NaN fails every comparison, so v > 0 also rejects it
	return v > 0 && !math.IsInf(v, 0)
}

// Normalize divides every coordinate by its axis factor and truncates toward
// zero to integer display pixels.
//
// The output has the same length and order as the input; nothing is filtered
// here. On invalid factors it returns nil and ErrInvalidScale without
// producing any coordinates.
func Normalize(segments []geometry.Segment, f Factors) ([]geometry.Segment, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	out := make([]geometry.Segment, len(segments))
	for i, s := range segments {
		out[i] = geometry.Segment{
			X1: int(float64(s.X1) / f.SX),
			Y1: int(float64(s.Y1) / f.SY),
			X2: int(float64(s.X2) / f.SX),
			Y2: int(float64(s.Y2) / f.SY),
		}
	}
	return out, nil
}
