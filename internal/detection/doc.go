// Package detection turns a captured frame into raw line segments.
//
// The pipeline treats line detection as an oracle: it hands over a frame and
// a fixed parameter set and gets back zero or more segments in the frame's own
// pixel coordinates. It never reinterprets the parameters. This package holds
// the Oracle contract and the built-in implementations.
//
// # Algorithm Overview
//
// Both built-in oracles follow the same pipeline:
//
//  1. Channel split: the frame is converted to RGBA and split into R, G and B
//     planes. Edges are detected on each plane separately so colour-only
//     boundaries (equal luminance, different hue) are not lost.
//  2. Edge detection: Canny on each plane with the adjacent (low) and full
//     (high) hysteresis thresholds, then a bitwise OR of the three edge maps.
//  3. Line voting: progressive probabilistic Hough transform with minimum
//     votes, minimum segment length and maximum gap.
//
// # Implementations
//
//   - Hough: pure Go. Gradient and suppression passes run row-parallel.
//     Cancellation is honoured between stages and periodically inside the
//     voting loop, so a per-tick deadline bounds it.
//   - OpenCV: gocv bindings, built with the "gocv" build tag. It cannot be
//     interrupted inside an OpenCV call; the deadline is checked around it.
//
// Default returns OpenCV when built with the tag and Hough otherwise.
//
// # Coordinate System
//
// Segments are returned relative to the frame's top-left pixel, whatever the
// frame's Bounds().Min is:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Performance Considerations
//
// Voting costs O(edge pixels × theta bins). A full-HD desktop can produce
// hundreds of thousands of edge pixels; downscaling the capture (see the
// capture package) is the cheapest way to stay inside a 60 Hz budget.
package detection
