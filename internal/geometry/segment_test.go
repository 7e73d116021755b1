package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_Length(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
		want float64
	}{
		{"horizontal", Seg(0, 0, 100, 0), 100},
		{"vertical", Seg(5, 5, 5, 25), 20},
		{"3-4-5", Seg(0, 0, 3, 4), 5},
		{"negative direction", Seg(10, 10, 7, 6), 5},
		{"degenerate", Seg(7, 7, 7, 7), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.seg.Length(), 1e-9)
		})
	}
}

func TestSegment_Polar(t *testing.T) {
	tests := []struct {
		name      string
		seg       Segment
		wantRho   float64
		wantTheta float64
	}{
		{"horizontal through origin", Seg(0, 0, 100, 0), 0, 0},
		{"horizontal one below", Seg(0, 1, 100, 1), 1, 0},
		{"horizontal far below", Seg(50, 50, 60, 50), 50, 0},
		{"vertical", Seg(30, 0, 30, 10), 30, 90},
		{"pointing left", Seg(100, 5, 0, 5), 5, 180},
		{"pointing up", Seg(10, 20, 10, 0), 10, 270},
		{"diagonal through origin", Seg(0, 0, 10, 10), 0, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.seg.Polar()
			require.NoError(t, err)
			assert.InDelta(t, tt.wantRho, p.Rho, 1e-9, "rho")
			assert.InDelta(t, tt.wantTheta, p.Theta, 1e-9, "theta")
		})
	}
}

func TestSegment_PolarThetaRange(t *testing.T) {
	// Every direction on a coarse grid must land in [0, 360)
	for dx := -5; dx <= 5; dx++ {
		for dy := -5; dy <= 5; dy++ {
			s := Seg(3, 4, 3+dx, 4+dy)
			if s.IsDegenerate() {
				continue
			}
			p, err := s.Polar()
			require.NoError(t, err)
			if p.Theta < 0 || p.Theta >= 360 {
				t.Errorf("%s: theta %.4f outside [0,360)", s, p.Theta)
			}
			if math.IsNaN(p.Rho) || math.IsInf(p.Rho, 0) || p.Rho < 0 {
				t.Errorf("%s: invalid rho %v", s, p.Rho)
			}
		}
	}
}

func TestSegment_PolarDegenerate(t *testing.T) {
	p, err := Seg(4, 4, 4, 4).Polar()
	if !errors.Is(err, ErrDegenerateSegment) {
		t.Fatalf("expected ErrDegenerateSegment, got %v", err)
	}
	assert.Equal(t, Polar{}, p)
}

func TestSegment_ReversedKeepsRho(t *testing.T) {
	s := Seg(12, 40, 90, 7)
	a, err := s.Polar()
	require.NoError(t, err)
	b, err := s.Reversed().Polar()
	require.NoError(t, err)

	assert.InDelta(t, a.Rho, b.Rho, 1e-9)
	assert.InDelta(t, 180, AngleDiff(a.Theta, b.Theta), 1e-9)
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{1, 359, 2},
		{359, 1, 2},
		{0, 180, 180},
		{90, 95, 5},
		{10, 10, 0},
		{0, 359.5, 0.5},
		{270, 80, 170},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, AngleDiff(tt.a, tt.b), 1e-9, "AngleDiff(%v, %v)", tt.a, tt.b)
	}
}

func TestNormalizeDegrees(t *testing.T) {
	assert.InDelta(t, 0.0, NormalizeDegrees(360), 1e-12)
	assert.InDelta(t, 270.0, NormalizeDegrees(-90), 1e-12)
	assert.InDelta(t, 45.0, NormalizeDegrees(405), 1e-12)
	assert.Less(t, NormalizeDegrees(-1e-15), 360.0)
}
