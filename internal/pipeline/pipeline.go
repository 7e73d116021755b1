package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ironsheep/edge-overlay/internal/capture"
	"github.com/ironsheep/edge-overlay/internal/dedup"
	"github.com/ironsheep/edge-overlay/internal/detection"
	"github.com/ironsheep/edge-overlay/internal/geometry"
	"github.com/ironsheep/edge-overlay/internal/monitoring"
	"github.com/ironsheep/edge-overlay/internal/scale"
	"github.com/ironsheep/edge-overlay/internal/timeutil"
)

// DefaultTickRate is the target tick frequency in hertz.
const DefaultTickRate = 60.0

// DefaultBudget bounds capture plus detection when Config.Budget is zero.
// It only stops a stuck collaborator; ticks slower than the period still
// publish and Run skips the ticks they overran.
const DefaultBudget = time.Second

// Display reports the resolution segments are mapped into.
type Display interface {
	Size() (width, height int)
}

// FixedDisplay is a Display with a constant size.
type FixedDisplay struct {
	Width, Height int
}

// Size returns the fixed width and height.
func (d FixedDisplay) Size() (int, int) { return d.Width, d.Height }

// TickReport describes one completed tick.
type TickReport struct {
	Snapshot Snapshot
	Duration time.Duration
	Err      error
}

// Observer receives tick outcomes. Calls come from the goroutine running
// Tick and must not block.
type Observer interface {
	ObserveTick(TickReport)
	ObserveSkip()
}

// Config wires a Pipeline to its collaborators.
type Config struct {
	Source capture.Source
	Oracle detection.Oracle

	// Display is the output resolution. Nil means display space equals
	// capture space.
	Display Display

	// Clock defaults to the real clock.
	Clock timeutil.Clock

	Params     detection.Params
	Thresholds dedup.Thresholds
	FilterMode dedup.Mode

	// TickRate in hertz; zero selects DefaultTickRate.
	TickRate float64

	// Budget bounds capture plus detection per tick; zero means
	// DefaultBudget.
	Budget time.Duration

	Observer Observer
}

// frameState is the only state carried from one tick to the next.
type frameState struct {
	prev time.Time
	fps  float64
}

// Pipeline produces a Snapshot per tick. Tick and Run are single-writer;
// Latest and Stage may be called from any goroutine.
type Pipeline struct {
	source     capture.Source
	oracle     detection.Oracle
	display    Display
	clock      timeutil.Clock
	params     detection.Params
	thresholds dedup.Thresholds
	mode       dedup.Mode
	period     time.Duration
	budget     time.Duration
	observer   Observer

	tickMu   sync.Mutex
	state    frameState
	seq      uint64
	lastKind ErrorKind

	latest  atomic.Pointer[Snapshot]
	stage   atomic.Int32
	skipped atomic.Uint64
}

// New validates cfg and returns a Pipeline in the Idle stage. The frame
// timer starts now, so the first tick already measures a frame rate.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Source == nil {
		return nil, errors.New("pipeline: capture source is required")
	}
	if cfg.Oracle == nil {
		return nil, errors.New("pipeline: detection oracle is required")
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if cfg.Thresholds.AngleDeg < 0 || cfg.Thresholds.Distance < 0 {
		return nil, fmt.Errorf("pipeline: thresholds must not be negative: %+v", cfg.Thresholds)
	}

	rate := cfg.TickRate
	if rate == 0 {
		rate = DefaultTickRate
	}
	if !(rate > 0) || rate > 1000 {
		return nil, fmt.Errorf("pipeline: tick rate %v out of range (0, 1000]", rate)
	}
	period := time.Duration(float64(time.Second) / rate)

	budget := cfg.Budget
	if budget == 0 {
		budget = DefaultBudget
	}
	if budget < 0 {
		return nil, fmt.Errorf("pipeline: negative tick budget %v", budget)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	p := &Pipeline{
		source:     cfg.Source,
		oracle:     cfg.Oracle,
		display:    cfg.Display,
		clock:      clock,
		params:     cfg.Params,
		thresholds: cfg.Thresholds,
		mode:       cfg.FilterMode,
		period:     period,
		budget:     budget,
		observer:   cfg.Observer,
		state:      frameState{prev: clock.Now()},
	}
	p.latest.Store(emptySnapshot())
	return p, nil
}

// Latest returns the most recently published Snapshot. Before the first tick
// it is empty with Show false and Sequence 0.
func (p *Pipeline) Latest() Snapshot {
	return *p.latest.Load()
}

// Stage reports where the current tick is.
func (p *Pipeline) Stage() Stage {
	return Stage(p.stage.Load())
}

// Skipped reports how many scheduled ticks Run dropped after overruns.
func (p *Pipeline) Skipped() uint64 {
	return p.skipped.Load()
}

// Period is the interval between scheduled ticks.
func (p *Pipeline) Period() time.Duration {
	return p.period
}

func (p *Pipeline) setStage(s Stage) {
	p.stage.Store(int32(s))
}

// Tick runs one full cycle and publishes its Snapshot. It always publishes;
// the returned error, wrapped in one of the error kinds, is for diagnostics
// only.
func (p *Pipeline) Tick(ctx context.Context) (Snapshot, error) {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	start := p.clock.Now()
	fps := p.state.fps
	if elapsed := start.Sub(p.state.prev); elapsed > 0 {
		fps = 1 / elapsed.Seconds()
	}
	p.state.prev = start

	snap, err := p.process(ctx, start)
	if errors.Is(err, ErrCaptureUnavailable) {
		// no frame: the estimate from the last captured tick stands
		fps = p.state.fps
	}
	p.state.fps = fps
	snap.FPS = fps

	p.seq++
	snap.Sequence = p.seq
	snap.TickedAt = start
	snap.Error = KindOf(err)
	if err != nil {
		snap.Lines = []geometry.Segment{}
		snap.Show = false
	} else {
		snap.Show = true
	}

	p.setStage(StagePublished)
	p.latest.Store(&snap)
	p.setStage(StageIdle)

	p.logTransition(snap.Error, err)
	if p.observer != nil {
		p.observer.ObserveTick(TickReport{
			Snapshot: snap,
			Duration: p.clock.Now().Sub(start),
			Err:      err,
		})
	}
	return snap, err
}

// process runs the stages up to filtering.
func (p *Pipeline) process(ctx context.Context, start time.Time) (Snapshot, error) {
	snap := Snapshot{Lines: []geometry.Segment{}}

	tctx, cancel := context.WithTimeout(ctx, p.budget)
	defer cancel()

	p.setStage(StageCapturing)
	frame, err := p.source.Capture(tctx)
	if err == nil && (frame == nil || frame.Image == nil) {
		err = errors.New("source returned no image")
	}
	if err != nil {
		return snap, fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}
	snap.CaptureWidth, snap.CaptureHeight = frame.Width, frame.Height

	p.setStage(StageDetecting)
	raw, err := p.oracle.Detect(tctx, frame.Image, p.params)
	if err != nil {
		return snap, fmt.Errorf("%w: %w", ErrOracleFailure, err)
	}
	snap.Raw = len(raw)

	p.setStage(StageNormalizing)
	factors := scale.Identity()
	if p.display != nil {
		dw, dh := p.display.Size()
		factors, err = scale.NewFactors(frame.Width, frame.Height, dw, dh)
		if err != nil {
			return snap, err
		}
	}
	normalized, err := scale.Normalize(raw, factors)
	if err != nil {
		return snap, err
	}

	p.setStage(StageFiltering)
	res := dedup.Apply(normalized, p.thresholds, p.mode)
	snap.Lines = res.Lines
	snap.Duplicates = res.Duplicates
	snap.Degenerate = res.Degenerate

	monitoring.Debugf("pipeline: tick raw=%d kept=%d dup=%d degenerate=%d in %v",
		snap.Raw, len(snap.Lines), snap.Duplicates, snap.Degenerate, p.clock.Now().Sub(start))
	return snap, nil
}

// logTransition logs only when the error kind changes so a persistent
// failure at 60 Hz produces one line.
func (p *Pipeline) logTransition(kind ErrorKind, err error) {
	if kind == p.lastKind {
		return
	}
	if kind == KindNone {
		monitoring.Logf("pipeline: recovered after %s", p.lastKind)
	} else {
		monitoring.Logf("pipeline: tick failed (%s): %v", kind, err)
	}
	p.lastKind = kind
}

// Run ticks at the configured rate until ctx is cancelled. A tick that
// overruns the next scheduled time causes that pending tick to be dropped.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.period)
	defer ticker.Stop()

	monitoring.Logf("pipeline: running at %.1f Hz (budget %v)", float64(time.Second)/float64(p.period), p.budget)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}

		_, _ = p.Tick(ctx)

		select {
		case <-ticker.C():
			p.skipped.Add(1)
			if p.observer != nil {
				p.observer.ObserveSkip()
			}
		default:
		}
	}
}

// Once builds a pipeline from cfg, runs a single tick and returns its
// Snapshot. It serves one-shot detection on still images.
func Once(ctx context.Context, cfg Config) (Snapshot, error) {
	p, err := New(cfg)
	if err != nil {
		return Snapshot{}, err
	}
	return p.Tick(ctx)
}
