package capture

import (
	"context"
	"errors"
	"sync"

	"github.com/ironsheep/edge-overlay/internal/timeutil"
)

// ErrExhausted is returned by a non-looping Files source after its last image.
var ErrExhausted = errors.New("no more images")

// Files replays still images in order. With Loop set it cycles forever;
// otherwise Capture fails with ErrExhausted once every path has been served.
type Files struct {
	cache *ImageCache
	clock timeutil.Clock
	paths []string
	loop  bool

	mu   sync.Mutex
	next int
}

// FilesOption configures a Files source.
type FilesOption func(*Files)

// WithLoop makes the source cycle through its paths.
func WithLoop() FilesOption {
	return func(f *Files) { f.loop = true }
}

// WithCache shares an existing cache.
func WithCache(c *ImageCache) FilesOption {
	return func(f *Files) { f.cache = c }
}

// WithClock sets the clock used to stamp frames.
func WithClock(c timeutil.Clock) FilesOption {
	return func(f *Files) { f.clock = c }
}

// NewFiles returns a Source replaying paths.
func NewFiles(paths []string, opts ...FilesOption) (*Files, error) {
	if len(paths) == 0 {
		return nil, errors.New("at least one image path is required")
	}
	f := &Files{
		paths: append([]string(nil), paths...),
		clock: timeutil.RealClock{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cache == nil {
		f.cache = NewImageCache()
	}
	return f, nil
}

// Capture decodes (or fetches from cache) the next image.
func (f *Files) Capture(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	if f.next >= len(f.paths) {
		if !f.loop {
			f.mu.Unlock()
			return nil, ErrExhausted
		}
		f.next = 0
	}
	path := f.paths[f.next]
	f.next++
	f.mu.Unlock()

	img, err := f.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return NewFrame(img, f.clock.Now()), nil
}
