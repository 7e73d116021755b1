package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/edge-overlay/internal/timeutil"
)

// createTestImage writes a solid-colour PNG into dir and returns its path.
func createTestImage(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func staticSource(img image.Image) Source {
	return SourceFunc(func(ctx context.Context) (*Frame, error) {
		return NewFrame(img, time.Unix(100, 0)), nil
	})
}

func TestNewFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 110, 70))
	frame := NewFrame(img, time.Unix(5, 0))

	assert.Equal(t, 100, frame.Width)
	assert.Equal(t, 50, frame.Height)
	assert.Equal(t, time.Unix(5, 0), frame.CapturedAt)
}

func TestImageCache_LoadCaches(t *testing.T) {
	dir := t.TempDir()
	path := createTestImage(t, dir, "red.png", 20, 10, color.RGBA{255, 0, 0, 255})

	cache := NewImageCache()
	first, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, first.Bounds().Dx())

	// Removing the file proves the second load comes from memory.
	require.NoError(t, os.Remove(path))
	second, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	cache.Evict(path)
	_, err = cache.Load(path)
	assert.Error(t, err)
}

func TestImageCache_EvictReloads(t *testing.T) {
	dir := t.TempDir()
	path := createTestImage(t, dir, "frame.png", 4, 4, color.White)

	cache := NewImageCache()
	first, err := cache.Load(path)
	require.NoError(t, err)

	createTestImage(t, dir, "frame.png", 8, 6, color.Black)
	stale, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, stale.Bounds().Dx(), "cached until evicted")

	cache.Evict(path)
	fresh, err := cache.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, 8, fresh.Bounds().Dx())
}

func TestImageCache_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	_, err := NewImageCache().Load(path)
	assert.Error(t, err)
}

func TestImageCache_Concurrent(t *testing.T) {
	dir := t.TempDir()
	path := createTestImage(t, dir, "c.png", 8, 8, color.White)
	cache := NewImageCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, os.Remove(path))
	_, err := cache.Load(path)
	assert.NoError(t, err, "served from memory after the file is gone")
}

func TestFiles_Sequence(t *testing.T) {
	dir := t.TempDir()
	a := createTestImage(t, dir, "a.png", 10, 10, color.White)
	b := createTestImage(t, dir, "b.png", 30, 20, color.Black)
	clock := timeutil.NewMockClock(time.Unix(1000, 0))

	src, err := NewFiles([]string{a, b}, WithClock(clock))
	require.NoError(t, err)

	f1, err := src.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, f1.Width)
	assert.Equal(t, time.Unix(1000, 0), f1.CapturedAt)

	clock.Advance(time.Second)
	f2, err := src.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, f2.Width)
	assert.Equal(t, 20, f2.Height)
	assert.Equal(t, time.Unix(1001, 0), f2.CapturedAt)

	_, err = src.Capture(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestFiles_Loop(t *testing.T) {
	dir := t.TempDir()
	a := createTestImage(t, dir, "a.png", 10, 10, color.White)
	cache := NewImageCache()

	src, err := NewFiles([]string{a}, WithLoop(), WithCache(cache))
	require.NoError(t, err)
	_, err = src.Capture(context.Background())
	require.NoError(t, err)

	// later passes come from the cache
	require.NoError(t, os.Remove(a))
	for i := 0; i < 3; i++ {
		_, err := src.Capture(context.Background())
		require.NoError(t, err)
	}
}

func TestFiles_Errors(t *testing.T) {
	_, err := NewFiles(nil)
	assert.Error(t, err)

	src, err := NewFiles([]string{filepath.Join(t.TempDir(), "missing.png")})
	require.NoError(t, err)
	_, err = src.Capture(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Capture(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScreen_MissingDisplay(t *testing.T) {
	_, err := NewScreen(-1, nil).Capture(context.Background())
	assert.True(t, errors.Is(err, ErrNoDisplay), "got %v", err)

	_, _, err = DisplaySize(-1)
	assert.ErrorIs(t, err, ErrNoDisplay)
}

func TestScaled(t *testing.T) {
	src, err := NewScaled(staticSource(image.NewRGBA(image.Rect(0, 0, 200, 100))), 0.5)
	require.NoError(t, err)

	frame, err := src.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, frame.Width)
	assert.Equal(t, 50, frame.Height)
	assert.Equal(t, time.Unix(100, 0), frame.CapturedAt)
}

func TestScaled_Identity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	src, err := NewScaled(staticSource(img), 1)
	require.NoError(t, err)

	frame, err := src.Capture(context.Background())
	require.NoError(t, err)
	assert.Same(t, img, frame.Image.(*image.RGBA))
}

func TestScaled_Invalid(t *testing.T) {
	inner := staticSource(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	for _, f := range []float64{0, -1} {
		_, err := NewScaled(inner, f)
		assert.Error(t, err, "factor %v", f)
	}

	src, err := NewScaled(inner, 0.1)
	require.NoError(t, err)
	_, err = src.Capture(context.Background())
	assert.Error(t, err, "scaling 2x2 by 0.1 leaves nothing")
}

func TestCropped(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	img.Set(60, 70, color.RGBA{255, 0, 0, 255})

	src, err := NewCropped(staticSource(img), image.Rect(50, 50, 150, 80))
	require.NoError(t, err)

	frame, err := src.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, frame.Width, "region is clipped to the frame")
	assert.Equal(t, 30, frame.Height)

	r, _, _, _ := frame.Image.At(10, 20).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestCropped_Outside(t *testing.T) {
	src, err := NewCropped(staticSource(image.NewRGBA(image.Rect(0, 0, 10, 10))), image.Rect(20, 20, 30, 30))
	require.NoError(t, err)
	_, err = src.Capture(context.Background())
	assert.Error(t, err)

	_, err = NewCropped(src, image.Rectangle{})
	assert.Error(t, err)
}

func TestTransformPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := SourceFunc(func(ctx context.Context) (*Frame, error) { return nil, boom })

	scaled, err := NewScaled(failing, 0.5)
	require.NoError(t, err)
	_, err = scaled.Capture(context.Background())
	assert.ErrorIs(t, err, boom)

	cropped, err := NewCropped(failing, image.Rect(0, 0, 1, 1))
	require.NoError(t, err)
	_, err = cropped.Capture(context.Background())
	assert.ErrorIs(t, err, boom)
}
