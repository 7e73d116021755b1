// Package dedup collapses near-duplicate line detections.
//
// Line detectors report the same visible edge several times: once per colour
// channel, once per slightly different vote peak, or split at a gap. The
// filter keeps the longest detection of each edge and drops the rest.
//
// Two segments are near-duplicates when their directions differ by at most
// AngleDeg (wrapped at 0/360) and their rho values differ by strictly less than
// Distance. Segments are visited longest first; a segment is retained only if
// it is not a near-duplicate of any segment retained before it. The result is
// therefore idempotent: filtering it again with the same thresholds returns it
// unchanged.
package dedup

import (
	"math"
	"sort"

	"github.com/ironsheep/edge-overlay/internal/geometry"
)

// Default thresholds.
const (
	DefaultAngleDeg = 5.0
	DefaultDistance = 10.0
)

// bucketedMinSegments is the input size above which ModeAuto switches to the
// bucketed index.
const bucketedMinSegments = 64

// Thresholds configures the near-duplicate predicate.
type Thresholds struct {
	// AngleDeg is the largest direction difference, in degrees, at which two
	// segments can still be duplicates.
	AngleDeg float64 `json:"angle_threshold_deg"`

	// Distance is the rho difference, in display pixels, below which two
	// segments with matching direction are duplicates.
	Distance float64 `json:"distance_threshold"`
}

// DefaultThresholds returns 5 degrees and 10 pixels.
func DefaultThresholds() Thresholds {
	return Thresholds{AngleDeg: DefaultAngleDeg, Distance: DefaultDistance}
}

// Mode selects how retained segments are searched.
type Mode int

const (
	// ModeAuto uses the bucketed index for large inputs.
	ModeAuto Mode = iota
	// ModeLinear compares against every retained segment.
	ModeLinear
	// ModeBucketed indexes retained segments by (theta, rho) cell.
	ModeBucketed
)

// Result is the outcome of one filter pass.
type Result struct {
	// Lines holds the retained segments, longest first.
	Lines []geometry.Segment `json:"lines"`

	// Duplicates counts segments dropped as near-duplicates.
	Duplicates int `json:"duplicates"`

	// Degenerate counts zero-length segments excluded before comparison.
	Degenerate int `json:"degenerate"`
}

// NearDuplicate reports whether two polar descriptors describe the same edge.
func NearDuplicate(a, b geometry.Polar, th Thresholds) bool {
	if geometry.AngleDiff(a.Theta, b.Theta) > th.AngleDeg {
		return false
	}
	return math.Abs(a.Rho-b.Rho) < th.Distance
}

// Filter returns the minimal subset of segments with near-duplicates removed.
func Filter(segments []geometry.Segment, th Thresholds) []geometry.Segment {
	return Apply(segments, th, ModeAuto).Lines
}

type candidate struct {
	seg    geometry.Segment
	polar  geometry.Polar
	length float64
}

// Apply runs the greedy length-priority filter and reports what it dropped.
//
// Zero-length segments have no direction; they are counted in Degenerate and
// never reach the comparison. Equal-length segments keep their input order.
func Apply(segments []geometry.Segment, th Thresholds, mode Mode) Result {
	res := Result{Lines: make([]geometry.Segment, 0, len(segments))}

	cands := make([]candidate, 0, len(segments))
	for _, s := range segments {
		p, err := s.Polar()
		if err != nil {
			res.Degenerate++
			continue
		}
		cands = append(cands, candidate{seg: s, polar: p, length: s.Length()})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].length > cands[j].length
	})

	idx := newIndex(th, mode, len(cands))
	for _, c := range cands {
		if idx.matches(c.polar) {
			res.Duplicates++
			continue
		}
		idx.add(c.polar)
		res.Lines = append(res.Lines, c.seg)
	}

	return res
}

// index holds the descriptors of retained segments.
type index interface {
	matches(p geometry.Polar) bool
	add(p geometry.Polar)
}

func newIndex(th Thresholds, mode Mode, n int) index {
	useBuckets := mode == ModeBucketed || (mode == ModeAuto && n > bucketedMinSegments)
	if useBuckets {
		if b, ok := newBucketIndex(th); ok {
			return b
		}
	}
	return &linearIndex{th: th}
}

type linearIndex struct {
	th       Thresholds
	retained []geometry.Polar
}

func (l *linearIndex) matches(p geometry.Polar) bool {
	for _, q := range l.retained {
		if NearDuplicate(p, q, l.th) {
			return true
		}
	}
	return false
}

func (l *linearIndex) add(p geometry.Polar) {
	l.retained = append(l.retained, p)
}

// bucketIndex partitions (theta, rho) space into cells at least as wide as
// the thresholds, so every near-duplicate of p lies in p's cell or one of its
// eight neighbours. Theta cells wrap around 360.
type bucketIndex struct {
	th         Thresholds
	thetaBins  int
	thetaWidth float64
	cells      map[[2]int][]geometry.Polar
}

func newBucketIndex(th Thresholds) (*bucketIndex, bool) {
	if !(th.AngleDeg > 0) || !(th.Distance > 0) || math.IsInf(th.Distance, 0) {
		return nil, false
	}
	bins := int(math.Floor(360 / th.AngleDeg))
	// Fewer than three bins would make the wrapped neighbours collide.
	if bins < 3 {
		return nil, false
	}
	return &bucketIndex{
		th:         th,
		thetaBins:  bins,
		thetaWidth: 360 / float64(bins),
		cells:      make(map[[2]int][]geometry.Polar),
	}, true
}

func (b *bucketIndex) key(p geometry.Polar) (int, int) {
	t := int(p.Theta / b.thetaWidth)
	if t >= b.thetaBins {
		t = b.thetaBins - 1
	}
	return t, int(math.Floor(p.Rho / b.th.Distance))
}

func (b *bucketIndex) matches(p geometry.Polar) bool {
	t, r := b.key(p)
	for dt := -1; dt <= 1; dt++ {
		tt := (t + dt + b.thetaBins) % b.thetaBins
		for dr := -1; dr <= 1; dr++ {
			for _, q := range b.cells[[2]int{tt, r + dr}] {
				if NearDuplicate(p, q, b.th) {
					return true
				}
			}
		}
	}
	return false
}

func (b *bucketIndex) add(p geometry.Polar) {
	t, r := b.key(p)
	k := [2]int{t, r}
	b.cells[k] = append(b.cells[k], p)
}
