package detection

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/ironsheep/edge-overlay/internal/geometry"
)

// cancelCheckInterval is how many voting iterations run between context
// checks.
const cancelCheckInterval = 1024

// Hough is the pure-Go oracle: per-channel Canny followed by a progressive
// probabilistic Hough transform.
type Hough struct{}

// NewHough returns the pure-Go oracle.
func NewHough() *Hough {
	return &Hough{}
}

// Detect finds line segments in frame.
func (h *Hough) Detect(ctx context.Context, frame image.Image, p Params) ([]geometry.Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	edges, err := channelEdges(ctx, frame, p)
	if err != nil {
		return nil, fmt.Errorf("edge detection: %w", err)
	}

	segs, err := houghSegments(ctx, edges, p)
	if err != nil {
		return nil, fmt.Errorf("line voting: %w", err)
	}
	return segs, nil
}

// houghSegments runs the progressive probabilistic Hough transform on an
// edge map.
//
// # Algorithm
//
//  1. Visit edge pixels in random order (seeded by p.Seed).
//  2. Each visited pixel votes for every (rho, theta) bin its lines pass
//     through. If its strongest bin reaches p.MinVotes, walk from the pixel
//     along that line in both directions, bridging at most p.MaxLineGap
//     missing pixels, to find the segment endpoints.
//  3. Every edge pixel on the walked segment is consumed so it cannot seed or
//     vote again. If the segment is long enough, consumed pixels also take
//     back the votes they already cast and the segment is emitted.
//
// Walking uses 16.16 fixed point along the minor axis so a line advances
// exactly one pixel per step on its major axis.
func houghSegments(ctx context.Context, edges *edgeMap, p Params) ([]geometry.Segment, error) {
	width, height := edges.width, edges.height
	segs := make([]geometry.Segment, 0)
	if width == 0 || height == 0 {
		return segs, nil
	}

	theta := p.ThetaResolutionDeg * math.Pi / 180
	irho := 1 / p.RhoResolution
	numAngle := int(math.Round(math.Pi / theta))
	if numAngle < 1 {
		numAngle = 1
	}
	numRho := int(math.Round(float64(width+height)*2*irho)) + 1
	rhoOffset := (numRho - 1) / 2

	cosT := make([]float64, numAngle)
	sinT := make([]float64, numAngle)
	for n := 0; n < numAngle; n++ {
		a := float64(n) * theta
		cosT[n] = math.Cos(a) * irho
		sinT[n] = math.Sin(a) * irho
	}

	accum := make([]int32, numAngle*numRho)
	mask := make([]bool, len(edges.pix))
	copy(mask, edges.pix)

	points := make([]int, 0, edges.count())
	for i, v := range edges.pix {
		if v {
			points = append(points, i)
		}
	}

	vote := func(x, y int, delta int32) {
		fx, fy := float64(x), float64(y)
		for n := 0; n < numAngle; n++ {
			r := int(math.Round(fx*cosT[n]+fy*sinT[n])) + rhoOffset
			accum[n*numRho+r] += delta
		}
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	const shift = 16

	for count := len(points); count > 0; count-- {
		if count%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		idx := rng.IntN(count)
		pt := points[idx]
		points[idx] = points[count-1]

		if !mask[pt] {
			continue
		}
		x0, y0 := pt%width, pt/width

		// Vote and find the strongest bin for this point.
		maxVal := int32(p.MinVotes - 1)
		maxN := -1
		fx, fy := float64(x0), float64(y0)
		for n := 0; n < numAngle; n++ {
			r := int(math.Round(fx*cosT[n]+fy*sinT[n])) + rhoOffset
			v := accum[n*numRho+r] + 1
			accum[n*numRho+r] = v
			if v > maxVal {
				maxVal = v
				maxN = n
			}
		}
		if maxN < 0 {
			continue
		}

		// Direction along the line is perpendicular to its normal.
		a := -sinT[maxN]
		b := cosT[maxN]

		var dx0, dy0 int
		var xStart, yStart int
		xMajor := math.Abs(a) > math.Abs(b)
		if xMajor {
			dx0 = 1
			if a < 0 {
				dx0 = -1
			}
			dy0 = int(math.Round(b * (1 << shift) / math.Abs(a)))
			xStart = x0
			yStart = (y0 << shift) + (1 << (shift - 1))
		} else {
			dy0 = 1
			if b < 0 {
				dy0 = -1
			}
			dx0 = int(math.Round(a * (1 << shift) / math.Abs(b)))
			xStart = (x0 << shift) + (1 << (shift - 1))
			yStart = y0
		}

		pixel := func(x, y int) (int, int) {
			if xMajor {
				return x, y >> shift
			}
			return x >> shift, y
		}

		var ends [2][2]int
		for k := 0; k < 2; k++ {
			gap := 0
			x, y, dx, dy := xStart, yStart, dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}
			for ; ; x, y = x+dx, y+dy {
				px, py := pixel(x, y)
				if px < 0 || px >= width || py < 0 || py >= height {
					break
				}
				if mask[py*width+px] {
					gap = 0
					ends[k] = [2]int{px, py}
				} else if gap++; gap > p.MaxLineGap {
					break
				}
			}
		}

		goodLine := absInt(ends[1][0]-ends[0][0]) >= p.MinLineLength ||
			absInt(ends[1][1]-ends[0][1]) >= p.MinLineLength

		for k := 0; k < 2; k++ {
			x, y, dx, dy := xStart, yStart, dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}
			for ; ; x, y = x+dx, y+dy {
				px, py := pixel(x, y)
				if px < 0 || px >= width || py < 0 || py >= height {
					break
				}
				i := py*width + px
				if mask[i] {
					if goodLine {
						vote(px, py, -1)
					}
					mask[i] = false
				}
				if px == ends[k][0] && py == ends[k][1] {
					break
				}
			}
		}

		if goodLine {
			segs = append(segs, geometry.Seg(ends[0][0], ends[0][1], ends[1][0], ends[1][1]))
			if p.MaxLines > 0 && len(segs) >= p.MaxLines {
				break
			}
		}
	}

	return segs, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
