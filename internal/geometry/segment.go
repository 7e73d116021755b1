package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrDegenerateSegment is returned when a zero-length segment reaches polar
// conversion.
var ErrDegenerateSegment = errors.New("degenerate segment")

// Segment is a straight line segment between two integer pixel endpoints.
type Segment struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Polar is the (rho, theta) descriptor of a segment's supporting line.
type Polar struct {
	Rho   float64 `json:"rho"`
	Theta float64 `json:"theta"` // degrees in [0, 360)
}

// Seg is shorthand for constructing a Segment from four coordinates.
func Seg(x1, y1, x2, y2 int) Segment {
	return Segment{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func (s Segment) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", s.X1, s.Y1, s.X2, s.Y2)
}

func (s Segment) start() r2.Vec { return r2.Vec{X: float64(s.X1), Y: float64(s.Y1)} }
func (s Segment) end() r2.Vec   { return r2.Vec{X: float64(s.X2), Y: float64(s.Y2)} }

// Direction returns the vector from the first endpoint to the second.
func (s Segment) Direction() r2.Vec {
	return r2.Sub(s.end(), s.start())
}

// Length returns the Euclidean distance between the endpoints.
func (s Segment) Length() float64 {
	return r2.Norm(s.Direction())
}

// IsDegenerate reports whether both endpoints coincide.
func (s Segment) IsDegenerate() bool {
	return s.X1 == s.X2 && s.Y1 == s.Y2
}

// Reversed returns the segment with its endpoints swapped.
func (s Segment) Reversed() Segment {
	return Segment{X1: s.X2, Y1: s.Y2, X2: s.X1, Y2: s.Y1}
}

// Polar converts the segment into its polar descriptor.
//
// Theta is atan2(dy, dx) in degrees normalized into [0, 360). Rho is
// |dx*(-y1) - dy*(-x1)| / length, the distance from the origin to the line
// through the segment. Zero-length segments return ErrDegenerateSegment and a
// zero descriptor.
func (s Segment) Polar() (Polar, error) {
	if s.IsDegenerate() {
		return Polar{}, fmt.Errorf("%w: %s", ErrDegenerateSegment, s)
	}

	d := s.Direction()
	length := r2.Norm(d)

	// cross(d, -p1) = dx*(-y1) - dy*(-x1)
	rho := math.Abs(r2.Cross(d, r2.Scale(-1, s.start()))) / length

	return Polar{Rho: rho, Theta: NormalizeDegrees(math.Atan2(d.Y, d.X) * 180 / math.Pi)}, nil
}

// NormalizeDegrees maps an angle in degrees into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -tiny + 360 rounds to 360 in float64
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// AngleDiff returns the absolute difference between two directions in
// degrees, wrapped at the 0/360 boundary so the result is in [0, 180].
func AngleDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
