package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Paint is a colour with separate opacity.
type Paint struct {
	Hex   string  `json:"color"`
	Alpha float64 `json:"alpha"`
}

func (p Paint) resolve() (rgba, error) {
	c, err := colorful.Hex(p.Hex)
	if err != nil {
		return rgba{}, fmt.Errorf("invalid colour %q: %w", p.Hex, err)
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return rgba{}, fmt.Errorf("alpha %v for %s outside [0,1]", p.Alpha, p.Hex)
	}
	return rgba{r: c.R, g: c.G, b: c.B, a: p.Alpha}, nil
}

type rgba struct {
	r, g, b, a float64
}

// Style controls how a snapshot is drawn.
type Style struct {
	Line        Paint
	LineWidth   float64
	Border      Paint
	BorderWidth float64
	FPS         Paint
	FontSize    float64
}

// DefaultStyle is a green line, a half-transparent red border five pixels
// wide and a 16 point blue frame-rate label.
func DefaultStyle() Style {
	return Style{
		Line:        Paint{Hex: "#00FF00", Alpha: 1},
		LineWidth:   1,
		Border:      Paint{Hex: "#FF0000", Alpha: 128.0 / 255},
		BorderWidth: 5,
		FPS:         Paint{Hex: "#0000FF", Alpha: 200.0 / 255},
		FontSize:    16,
	}
}

type resolvedStyle struct {
	line, border, fps      rgba
	lineWidth, borderWidth float64
	fontSize               float64
}

// Validate reports the first unusable colour or size.
func (s Style) Validate() error {
	_, err := s.resolve()
	return err
}

func (s Style) resolve() (resolvedStyle, error) {
	var r resolvedStyle
	var err error
	if r.line, err = s.Line.resolve(); err != nil {
		return r, fmt.Errorf("line: %w", err)
	}
	if r.border, err = s.Border.resolve(); err != nil {
		return r, fmt.Errorf("border: %w", err)
	}
	if r.fps, err = s.FPS.resolve(); err != nil {
		return r, fmt.Errorf("fps label: %w", err)
	}
	if s.LineWidth <= 0 || s.FontSize <= 0 {
		return r, fmt.Errorf("line width %v and font size %v must be positive", s.LineWidth, s.FontSize)
	}
	if s.BorderWidth < 0 {
		return r, fmt.Errorf("border width %v must not be negative", s.BorderWidth)
	}
	r.lineWidth, r.borderWidth, r.fontSize = s.LineWidth, s.BorderWidth, s.FontSize
	return r, nil
}
