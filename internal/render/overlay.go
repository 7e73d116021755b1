package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ironsheep/edge-overlay/internal/monitoring"
	"github.com/ironsheep/edge-overlay/internal/pipeline"
	"github.com/ironsheep/edge-overlay/internal/timeutil"
)

// Position of the frame-rate label baseline.
const (
	labelX = 10
	labelY = 30
)

// DefaultRenderRate is the redraw frequency in hertz.
const DefaultRenderRate = 30.0

// SnapshotSource is anything that publishes snapshots, normally a
// *pipeline.Pipeline.
type SnapshotSource interface {
	Latest() pipeline.Snapshot
}

// Overlay rasterizes snapshots at a fixed display size. It implements
// pipeline.Display so the pipeline scales segments to the canvas.
type Overlay struct {
	width, height int
	style         resolvedStyle
	sink          Sink

	mu      sync.Mutex
	dc      *gg.Context
	font    *text.FontSource
	lastSeq uint64
	drawn   bool
}

var _ pipeline.Display = (*Overlay)(nil)

// New creates an overlay canvas. sink may be nil.
func New(width, height int, style Style, sink Sink) (*Overlay, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid overlay size %dx%d", width, height)
	}
	rs, err := style.resolve()
	if err != nil {
		return nil, err
	}

	font, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}

	dc := gg.NewContext(width, height)
	dc.SetFont(font.Face(rs.fontSize))

	return &Overlay{
		width:  width,
		height: height,
		style:  rs,
		sink:   sink,
		dc:     dc,
		font:   font,
	}, nil
}

// Size returns the canvas size.
func (o *Overlay) Size() (int, int) {
	return o.width, o.height
}

// Draw renders snap, hands the frame to the sink and returns it.
func (o *Overlay) Draw(snap pipeline.Snapshot) (image.Image, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	img, err := o.draw(snap)
	if err != nil {
		return nil, err
	}
	o.lastSeq, o.drawn = snap.Sequence, true

	if o.sink != nil {
		if err := o.sink.Write(img, snap.Sequence); err != nil {
			return img, fmt.Errorf("sink: %w", err)
		}
	}
	return img, nil
}

func (o *Overlay) draw(snap pipeline.Snapshot) (image.Image, error) {
	dc := o.dc
	s := o.style
	dc.Clear()

	if snap.Show {
		if s.borderWidth > 0 {
			dc.SetRGBA(s.border.r, s.border.g, s.border.b, s.border.a)
			dc.SetLineWidth(s.borderWidth)
			dc.DrawRectangle(0, 0, float64(o.width), float64(o.height))
			if err := dc.Stroke(); err != nil {
				return nil, fmt.Errorf("border: %w", err)
			}
		}

		if len(snap.Lines) > 0 {
			dc.SetRGBA(s.line.r, s.line.g, s.line.b, s.line.a)
			dc.SetLineWidth(s.lineWidth)
			// +0.5 puts odd-width strokes on pixel centres
			for _, l := range snap.Lines {
				dc.DrawLine(float64(l.X1)+0.5, float64(l.Y1)+0.5, float64(l.X2)+0.5, float64(l.Y2)+0.5)
			}
			if err := dc.Stroke(); err != nil {
				return nil, fmt.Errorf("lines: %w", err)
			}
		}
	}

	dc.SetRGBA(s.fps.r, s.fps.g, s.fps.b, s.fps.a)
	dc.DrawString(fmt.Sprintf("FPS: %.1f", snap.FPS), labelX, labelY)

	return dc.Image(), nil
}

// Run redraws from src at rate hertz until ctx is cancelled. A snapshot
// already drawn is not drawn again. Draw errors are logged and the loop
// continues.
func (o *Overlay) Run(ctx context.Context, src SnapshotSource, rate float64, clock timeutil.Clock) error {
	if !(rate > 0) {
		return fmt.Errorf("invalid render rate %v", rate)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	ticker := clock.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}

		snap := src.Latest()
		if !o.needsRedraw(snap.Sequence) {
			continue
		}
		_, err := o.Draw(snap)
		if err != nil && (lastErr == nil || err.Error() != lastErr.Error()) {
			monitoring.Logf("render: %v", err)
		}
		lastErr = err
	}
}

func (o *Overlay) needsRedraw(seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.drawn || seq != o.lastSeq
}

// Close releases the canvas and font.
func (o *Overlay) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return errors.Join(o.dc.Close(), o.font.Close())
}
