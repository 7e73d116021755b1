package capture

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Scaled resizes every frame of an inner source by a constant factor. A
// factor below 1 trades detection detail for speed; the pipeline's scale
// factors absorb the change since they are computed from the frame size.
type Scaled struct {
	inner  Source
	factor float64
}

// NewScaled wraps inner. factor must be positive and finite.
func NewScaled(inner Source, factor float64) (*Scaled, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("invalid capture scale %v", factor)
	}
	return &Scaled{inner: inner, factor: factor}, nil
}

// Capture returns the inner frame resized by the factor. A factor of 1 passes
// frames through untouched.
func (s *Scaled) Capture(ctx context.Context) (*Frame, error) {
	frame, err := s.inner.Capture(ctx)
	if err != nil {
		return nil, err
	}
	if s.factor == 1 {
		return frame, nil
	}

	w := int(float64(frame.Width) * s.factor)
	h := int(float64(frame.Height) * s.factor)
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("frame %dx%d scaled by %v is empty", frame.Width, frame.Height, s.factor)
	}
	resized := imaging.Resize(frame.Image, w, h, imaging.Linear)
	return NewFrame(resized, frame.CapturedAt), nil
}

// Cropped restricts every frame of an inner source to a region given in the
// inner frame's coordinates.
type Cropped struct {
	inner  Source
	region image.Rectangle
}

// NewCropped wraps inner.
func NewCropped(inner Source, region image.Rectangle) (*Cropped, error) {
	if region.Empty() {
		return nil, fmt.Errorf("invalid crop region %v", region)
	}
	return &Cropped{inner: inner, region: region}, nil
}

// Capture returns the part of the inner frame inside the region. The region
// is clipped to the frame; an empty intersection is an error.
func (c *Cropped) Capture(ctx context.Context) (*Frame, error) {
	frame, err := c.inner.Capture(ctx)
	if err != nil {
		return nil, err
	}

	bounds := frame.Image.Bounds()
	region := c.region.Add(bounds.Min).Intersect(bounds)
	if region.Empty() {
		return nil, fmt.Errorf("crop region %v outside frame %dx%d", c.region, frame.Width, frame.Height)
	}
	cropped := imaging.Crop(frame.Image, region)
	return NewFrame(cropped, frame.CapturedAt), nil
}
