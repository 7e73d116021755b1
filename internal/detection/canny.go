package detection

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/parallel"
)

// edgeMap is a binary edge image stored row-major.
type edgeMap struct {
	width  int
	height int
	pix    []bool
}

func newEdgeMap(width, height int) *edgeMap {
	return &edgeMap{width: width, height: height, pix: make([]bool, width*height)}
}

func (m *edgeMap) at(x, y int) bool {
	return m.pix[y*m.width+x]
}

// or merges other into m. Both maps must have the same size.
func (m *edgeMap) or(other *edgeMap) {
	for i, v := range other.pix {
		if v {
			m.pix[i] = true
		}
	}
}

func (m *edgeMap) count() int {
	n := 0
	for _, v := range m.pix {
		if v {
			n++
		}
	}
	return n
}

// channelEdges converts the frame to RGBA, optionally blurs it, runs Canny on
// the R, G and B planes and returns the union of the three edge maps.
func channelEdges(ctx context.Context, frame image.Image, p Params) (*edgeMap, error) {
	rgba := clone.AsRGBA(frame)
	if p.BlurRadius > 0 {
		rgba = blur.Gaussian(rgba, p.BlurRadius)
	}

	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	combined := newEdgeMap(width, height)
	if width < 3 || height < 3 {
		return combined, nil
	}

	plane := make([]uint8, width*height)
	for c := 0; c < 3; c++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			row := rgba.Pix[rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < width; x++ {
				plane[y*width+x] = row[x*4+c]
			}
		}
		edges, err := canny(ctx, plane, width, height, p.AdjacentThreshold, p.FullThreshold)
		if err != nil {
			return nil, err
		}
		combined.or(edges)
	}
	return combined, nil
}

// Gradient direction sectors for non-maximum suppression.
const (
	sectorHorizontal uint8 = iota // compare left and right
	sectorDiagonalDown            // compare up-left and down-right
	sectorVertical                // compare up and down
	sectorDiagonalUp              // compare up-right and down-left
)

const (
	tan22_5 = 0.41421356237309504880
	tan67_5 = 2.41421356237309504880
)

// Pixel classification after suppression.
const (
	pixelNone uint8 = iota
	pixelWeak
	pixelStrong
)

// canny detects edges in one 8-bit plane.
//
// # Algorithm
//
//  1. Gradient: 3x3 Sobel in X and Y with replicated borders. Magnitude is
//     the L1 norm |gx| + |gy|, matching the usual Canny thresholds scale.
//  2. Non-maximum suppression: a pixel survives only if it is a local
//     maximum along its gradient direction, quantized to four sectors.
//  3. Hysteresis: surviving pixels above high are strong, above low are
//     weak. Weak pixels 8-connected to a strong pixel become edges.
//
// Border pixels are never edges. If low > high the thresholds are swapped.
func canny(ctx context.Context, plane []uint8, width, height int, low, high float64) (*edgeMap, error) {
	if low > high {
		low, high = high, low
	}

	mag := make([]int32, width*height)
	sector := make([]uint8, width*height)

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			ym := clampIndex(y-1, height) * width
			y0 := y * width
			yp := clampIndex(y+1, height) * width
			for x := 0; x < width; x++ {
				xm := clampIndex(x-1, width)
				xp := clampIndex(x+1, width)

				gx := int32(plane[ym+xp]) + 2*int32(plane[y0+xp]) + int32(plane[yp+xp]) -
					int32(plane[ym+xm]) - 2*int32(plane[y0+xm]) - int32(plane[yp+xm])
				gy := int32(plane[yp+xm]) + 2*int32(plane[yp+x]) + int32(plane[yp+xp]) -
					int32(plane[ym+xm]) - 2*int32(plane[ym+x]) - int32(plane[ym+xp])

				ax, ay := abs32(gx), abs32(gy)
				mag[y0+x] = ax + ay

				switch {
				case float64(ay) <= float64(ax)*tan22_5:
					sector[y0+x] = sectorHorizontal
				case float64(ay) >= float64(ax)*tan67_5:
					sector[y0+x] = sectorVertical
				case (gx >= 0) == (gy >= 0):
					sector[y0+x] = sectorDiagonalDown
				default:
					sector[y0+x] = sectorDiagonalUp
				}
			}
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := make([]uint8, width*height)
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			if y == 0 || y == height-1 {
				continue
			}
			for x := 1; x < width-1; x++ {
				i := y*width + x
				m := mag[i]
				if float64(m) <= low {
					continue
				}

				var n1, n2 int32
				switch sector[i] {
				case sectorHorizontal:
					n1, n2 = mag[i-1], mag[i+1]
				case sectorVertical:
					n1, n2 = mag[i-width], mag[i+width]
				case sectorDiagonalDown:
					n1, n2 = mag[i-width-1], mag[i+width+1]
				default:
					n1, n2 = mag[i-width+1], mag[i+width-1]
				}
				if m <= n1 || m < n2 {
					continue
				}

				if float64(m) > high {
					state[i] = pixelStrong
				} else {
					state[i] = pixelWeak
				}
			}
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges := newEdgeMap(width, height)
	stack := make([]int, 0, 1024)
	for i, s := range state {
		if s == pixelStrong && !edges.pix[i] {
			stack = append(stack, i)
			edges.pix[i] = true
			stack = traceWeak(state, edges, width, height, stack)
		}
	}
	return edges, nil
}

// traceWeak promotes weak pixels reachable from the seeds on the stack.
// Iterative rather than recursive so long edges cannot overflow the stack.
func traceWeak(state []uint8, edges *edgeMap, width, height int, stack []int) []int {
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if state[n] != pixelNone && !edges.pix[n] {
					edges.pix[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return stack
}

// clampIndex constrains i to [0, n-1] for replicated-border convolution.
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
