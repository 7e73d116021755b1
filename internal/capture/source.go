package capture

import (
	"context"
	"errors"
	"image"
	"time"
)

// ErrNoDisplay is returned when the requested display does not exist.
var ErrNoDisplay = errors.New("no such display")

// Frame is one captured pixel buffer in raw (capture) space.
type Frame struct {
	Image      image.Image
	Width      int
	Height     int
	CapturedAt time.Time
}

// NewFrame wraps img, taking the resolution from its bounds.
func NewFrame(img image.Image, at time.Time) *Frame {
	b := img.Bounds()
	return &Frame{
		Image:      img,
		Width:      b.Dx(),
		Height:     b.Dy(),
		CapturedAt: at,
	}
}

// Source produces frames. Implementations must be safe to call from the
// pipeline goroutine while other goroutines hold earlier frames.
type Source interface {
	Capture(ctx context.Context) (*Frame, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*Frame, error)

// Capture calls f(ctx).
func (f SourceFunc) Capture(ctx context.Context) (*Frame, error) {
	return f(ctx)
}
