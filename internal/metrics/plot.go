package metrics

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SavePlot writes a chart of the windowed tick durations to path. The image
// format follows the extension (.png, .svg, .pdf). The period line marks the
// tick budget at the configured rate; pass 0 to omit it.
func (r *Recorder) SavePlot(path string, periodMs float64) error {
	r.mu.Lock()
	durations := r.durations.slice()
	r.mu.Unlock()

	if len(durations) == 0 {
		return errors.New("no ticks recorded")
	}

	p := plot.New()
	p.Title.Text = "Tick duration"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "ms"

	pts := make(plotter.XYs, len(durations))
	for i, d := range durations {
		pts[i] = plotter.XY{X: float64(i), Y: d}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("duration", line)

	if periodMs > 0 {
		budget, err := plotter.NewLine(plotter.XYs{
			{X: 0, Y: periodMs},
			{X: float64(len(durations) - 1), Y: periodMs},
		})
		if err != nil {
			return err
		}
		budget.Color = color.RGBA{R: 255, A: 255}
		budget.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(budget)
		p.Legend.Add("period", budget)
	}

	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save tick plot: %w", err)
	}
	return nil
}
