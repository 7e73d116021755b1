// Package metrics keeps rolling statistics about pipeline ticks.
//
// A Recorder is plugged into the pipeline as its Observer. It keeps the most
// recent tick durations, frame-rate estimates and line counts in fixed-size
// rings plus lifetime counters, and summarizes them on demand with gonum.
package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/edge-overlay/internal/pipeline"
)

// DefaultWindow is the number of recent ticks summarized.
const DefaultWindow = 600

// Recorder implements pipeline.Observer.
type Recorder struct {
	runID     string
	mu        sync.Mutex
	durations *ring // milliseconds
	fps       *ring
	lines     *ring
	ticks     uint64
	skipped   uint64
	errors    map[pipeline.ErrorKind]uint64
	last      time.Time
}

var _ pipeline.Observer = (*Recorder)(nil)

// NewRecorder keeps the last window ticks. A window below 1 uses
// DefaultWindow.
func NewRecorder(window int) *Recorder {
	if window < 1 {
		window = DefaultWindow
	}
	return &Recorder{
		runID:     uuid.NewString(),
		durations: newRing(window),
		fps:       newRing(window),
		lines:     newRing(window),
		errors:    make(map[pipeline.ErrorKind]uint64),
	}
}

// ObserveTick records one tick.
func (r *Recorder) ObserveTick(t pipeline.TickReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ticks++
	r.durations.push(float64(t.Duration) / float64(time.Millisecond))
	r.lines.push(float64(len(t.Snapshot.Lines)))
	if t.Snapshot.FPS > 0 {
		r.fps.push(t.Snapshot.FPS)
	}
	if t.Snapshot.Error != pipeline.KindNone {
		r.errors[t.Snapshot.Error]++
	}
	r.last = t.Snapshot.TickedAt
}

// ObserveSkip records a dropped tick.
func (r *Recorder) ObserveSkip() {
	r.mu.Lock()
	r.skipped++
	r.mu.Unlock()
}

// Summary is a point-in-time view of the recorder.
type Summary struct {
	// RunID changes whenever the process restarts.
	RunID string `json:"run_id"`

	Ticks   uint64 `json:"ticks"`
	Skipped uint64 `json:"skipped"`
	Window  int    `json:"window"`

	TickMeanMs   float64 `json:"tick_mean_ms"`
	TickStdDevMs float64 `json:"tick_stddev_ms"`
	TickMinMs    float64 `json:"tick_min_ms"`
	TickMaxMs    float64 `json:"tick_max_ms"`

	MeanFPS   float64 `json:"mean_fps"`
	MeanLines float64 `json:"mean_lines"`

	Errors map[string]uint64 `json:"errors"`

	LastTick time.Time `json:"last_tick,omitempty"`
}

// Summary computes statistics over the current window. Lifetime counters
// (ticks, skipped, errors) are not limited to the window.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	durations := r.durations.slice()
	fps := r.fps.slice()
	lines := r.lines.slice()
	s := Summary{
		RunID:    r.runID,
		Ticks:    r.ticks,
		Skipped:  r.skipped,
		Window:   len(durations),
		Errors:   make(map[string]uint64, len(r.errors)),
		LastTick: r.last,
	}
	for k, v := range r.errors {
		s.Errors[k.String()] = v
	}
	r.mu.Unlock()

	if len(durations) > 0 {
		s.TickMeanMs, s.TickStdDevMs = stat.MeanStdDev(durations, nil)
		if len(durations) == 1 {
			s.TickStdDevMs = 0
		}
		s.TickMinMs = floats.Min(durations)
		s.TickMaxMs = floats.Max(durations)
		s.MeanLines = stat.Mean(lines, nil)
	}
	if len(fps) > 0 {
		// harmonic mean of rates equals the rate of the mean interval
		s.MeanFPS = stat.HarmonicMean(fps, nil)
	}
	return s
}
