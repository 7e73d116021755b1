package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// Sink receives finished overlay frames.
type Sink interface {
	Write(img image.Image, seq uint64) error
}

// LatestFile is the name PNGSink uses when it is not numbering frames.
const LatestFile = "overlay-latest.png"

// PNGSink writes frames as PNG files into a directory. By default it keeps
// overwriting LatestFile; with Numbered set every frame gets its own file.
type PNGSink struct {
	Dir      string
	Numbered bool
}

// NewPNGSink creates dir if needed.
func NewPNGSink(dir string, numbered bool) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &PNGSink{Dir: dir, Numbered: numbered}, nil
}

// Path returns the file a frame with sequence seq is written to.
func (s *PNGSink) Path(seq uint64) string {
	if s.Numbered {
		return filepath.Join(s.Dir, fmt.Sprintf("overlay-%06d.png", seq))
	}
	return filepath.Join(s.Dir, LatestFile)
}

// Write encodes img. The file is written under a temporary name and renamed
// so a watcher never reads a partial PNG.
func (s *PNGSink) Write(img image.Image, seq uint64) error {
	dst := s.Path(seq)
	tmp, err := os.CreateTemp(s.Dir, ".overlay-*.png")
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to publish frame: %w", err)
	}
	return nil
}

// MemorySink keeps the most recent frame in memory.
type MemorySink struct {
	mu     sync.Mutex
	img    image.Image
	seq    uint64
	frames int
}

// Write stores img.
func (m *MemorySink) Write(img image.Image, seq uint64) error {
	m.mu.Lock()
	m.img, m.seq = img, seq
	m.frames++
	m.mu.Unlock()
	return nil
}

// Last returns the most recent frame and its snapshot sequence.
func (m *MemorySink) Last() (image.Image, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.img, m.seq
}

// Frames reports how many frames were written.
func (m *MemorySink) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}
