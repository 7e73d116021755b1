package capture

import (
	"context"
	"fmt"

	"github.com/kbinani/screenshot"

	"github.com/ironsheep/edge-overlay/internal/timeutil"
)

// Screen captures a whole display.
type Screen struct {
	display int
	clock   timeutil.Clock
}

// NewScreen returns a Source for display index display (0 is the primary).
func NewScreen(display int, clock timeutil.Clock) *Screen {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Screen{display: display, clock: clock}
}

// Capture grabs the display. The display count is re-read every call so a
// monitor that is unplugged mid-run turns into a per-tick error.
func (s *Screen) Capture(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := screenshot.NumActiveDisplays()
	if s.display < 0 || s.display >= n {
		return nil, fmt.Errorf("%w: display %d (%d active)", ErrNoDisplay, s.display, n)
	}

	bounds := screenshot.GetDisplayBounds(s.display)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %d: %w", s.display, err)
	}
	return NewFrame(img, s.clock.Now()), nil
}

// DisplaySize returns the resolution of display.
func DisplaySize(display int) (int, int, error) {
	n := screenshot.NumActiveDisplays()
	if display < 0 || display >= n {
		return 0, 0, fmt.Errorf("%w: display %d (%d active)", ErrNoDisplay, display, n)
	}
	b := screenshot.GetDisplayBounds(display)
	return b.Dx(), b.Dy(), nil
}
