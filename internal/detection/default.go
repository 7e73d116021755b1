//go:build !gocv

package detection

// Default returns the pure-Go oracle. Build with -tags gocv to use OpenCV.
func Default() Oracle {
	return NewHough()
}
