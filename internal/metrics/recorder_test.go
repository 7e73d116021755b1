package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/edge-overlay/internal/geometry"
	"github.com/ironsheep/edge-overlay/internal/pipeline"
)

func report(d time.Duration, fps float64, lines int, kind pipeline.ErrorKind) pipeline.TickReport {
	return pipeline.TickReport{
		Duration: d,
		Snapshot: pipeline.Snapshot{
			Lines: make([]geometry.Segment, lines),
			FPS:   fps,
			Error: kind,
		},
	}
}

func TestRing(t *testing.T) {
	r := newRing(3)
	assert.Empty(t, r.slice())

	r.push(1)
	r.push(2)
	assert.Equal(t, []float64{1, 2}, r.slice())

	r.push(3)
	r.push(4)
	assert.Equal(t, 3, r.len())
	assert.Equal(t, []float64{2, 3, 4}, r.slice())
}

func TestRecorder_Empty(t *testing.T) {
	s := NewRecorder(0).Summary()
	assert.Zero(t, s.Ticks)
	assert.Zero(t, s.Window)
	assert.Zero(t, s.MeanFPS)
	assert.NotNil(t, s.Errors)
}

func TestRecorder_Summary(t *testing.T) {
	r := NewRecorder(10)
	r.ObserveTick(report(10*time.Millisecond, 50, 2, pipeline.KindNone))
	r.ObserveTick(report(20*time.Millisecond, 25, 4, pipeline.KindNone))
	r.ObserveTick(report(30*time.Millisecond, 0, 0, pipeline.KindCaptureUnavailable))
	r.ObserveSkip()

	s := r.Summary()
	assert.Equal(t, uint64(3), s.Ticks)
	assert.Equal(t, uint64(1), s.Skipped)
	assert.Equal(t, 3, s.Window)
	assert.InDelta(t, 20, s.TickMeanMs, 1e-9)
	assert.InDelta(t, 10, s.TickStdDevMs, 1e-9)
	assert.InDelta(t, 10, s.TickMinMs, 1e-9)
	assert.InDelta(t, 30, s.TickMaxMs, 1e-9)
	assert.InDelta(t, 2, s.MeanLines, 1e-9)
	// intervals 20ms and 40ms average 30ms
	assert.InDelta(t, 1000.0/30, s.MeanFPS, 1e-9)
	assert.Equal(t, map[string]uint64{"capture_unavailable": 1}, s.Errors)
}

func TestRecorder_WindowSlides(t *testing.T) {
	r := NewRecorder(2)
	for i := 1; i <= 5; i++ {
		r.ObserveTick(report(time.Duration(i)*time.Millisecond, 60, i, pipeline.KindNone))
	}

	s := r.Summary()
	assert.Equal(t, uint64(5), s.Ticks)
	assert.Equal(t, 2, s.Window)
	assert.InDelta(t, 4.5, s.TickMeanMs, 1e-9)
	assert.InDelta(t, 4, s.TickMinMs, 1e-9)
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder(8)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.ObserveTick(report(time.Millisecond, 60, 1, pipeline.KindOracleFailure))
				_ = r.Summary()
			}
		}()
	}
	wg.Wait()

	s := r.Summary()
	require.Equal(t, uint64(200), s.Ticks)
	assert.Equal(t, uint64(200), s.Errors["oracle_failure"])
}

func TestRecorder_RunID(t *testing.T) {
	a, b := NewRecorder(4), NewRecorder(4)
	assert.NotEmpty(t, a.Summary().RunID)
	assert.Equal(t, a.Summary().RunID, a.Summary().RunID)
	assert.NotEqual(t, a.Summary().RunID, b.Summary().RunID)
}

func TestRecorder_SavePlot(t *testing.T) {
	r := NewRecorder(8)
	path := filepath.Join(t.TempDir(), "ticks.png")
	assert.Error(t, r.SavePlot(path, 16), "empty window")

	for i := 0; i < 5; i++ {
		r.ObserveTick(report(time.Duration(10+i)*time.Millisecond, 60, 1, pipeline.KindNone))
	}
	require.NoError(t, r.SavePlot(path, 16.7))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
