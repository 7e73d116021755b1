//go:build gocv

package detection

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"gocv.io/x/gocv"

	"github.com/ironsheep/edge-overlay/internal/geometry"
)

// OpenCV detects lines with OpenCV's Canny and HoughLinesP through gocv.
type OpenCV struct{}

// NewOpenCV returns the gocv-backed oracle.
func NewOpenCV() *OpenCV {
	return &OpenCV{}
}

// Default returns the OpenCV oracle in gocv builds.
func Default() Oracle {
	return NewOpenCV()
}

// Detect finds line segments in frame. The context is checked before and
// after the OpenCV calls; they cannot be interrupted.
func (o *OpenCV) Detect(ctx context.Context, frame image.Image, p Params) ([]geometry.Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rgba := clone.AsRGBA(frame)
	bounds := rgba.Bounds()
	rowLen := bounds.Dx() * 4
	pix := make([]byte, rowLen*bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		off := rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(pix[y*rowLen:], rgba.Pix[off:off+rowLen])
	}
	src, err := gocv.NewMatFromBytes(bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC4, pix)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap frame: %w", err)
	}
	defer src.Close()

	if p.BlurRadius > 0 {
		gocv.GaussianBlur(src, &src, image.Point{}, p.BlurRadius, p.BlurRadius, gocv.BorderDefault)
	}

	channels := gocv.Split(src)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	combined := gocv.NewMat()
	defer combined.Close()
	edges := gocv.NewMat()
	defer edges.Close()

	for i := 0; i < 3 && i < len(channels); i++ {
		if i == 0 {
			gocv.Canny(channels[i], &combined, float32(p.AdjacentThreshold), float32(p.FullThreshold))
			continue
		}
		gocv.Canny(channels[i], &edges, float32(p.AdjacentThreshold), float32(p.FullThreshold))
		gocv.BitwiseOr(combined, edges, &combined)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(combined, &lines,
		float32(p.RhoResolution),
		float32(p.ThetaResolutionDeg*math.Pi/180),
		p.MinVotes,
		float32(p.MinLineLength),
		float32(p.MaxLineGap))

	segs := make([]geometry.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segs = append(segs, geometry.Seg(int(v[0]), int(v[1]), int(v[2]), int(v[3])))
		if p.MaxLines > 0 && len(segs) >= p.MaxLines {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}
