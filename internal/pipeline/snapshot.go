package pipeline

import (
	"time"

	"github.com/ironsheep/edge-overlay/internal/geometry"
)

// Snapshot is what a tick publishes for the renderer.
type Snapshot struct {
	// Lines are display-space segments with near-duplicates removed.
	// Never nil; read-only once published.
	Lines []geometry.Segment `json:"lines"`

	// FPS is the instantaneous frame-rate estimate.
	FPS float64 `json:"fps"`

	// Show is false when the tick produced no valid data and the renderer
	// should draw nothing but the frame rate.
	Show bool `json:"show"`

	// Sequence counts published snapshots, starting at 1. Zero means no
	// tick has run yet.
	Sequence uint64 `json:"sequence"`

	Error ErrorKind `json:"error,omitempty"`

	// Raw is the number of segments the oracle returned.
	Raw        int `json:"raw"`
	Duplicates int `json:"duplicates"`
	Degenerate int `json:"degenerate"`

	CaptureWidth  int `json:"capture_width,omitempty"`
	CaptureHeight int `json:"capture_height,omitempty"`

	TickedAt time.Time `json:"ticked_at"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{Lines: []geometry.Segment{}}
}
