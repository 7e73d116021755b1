// Package render draws pipeline snapshots into an RGBA overlay image.
//
// The overlay is rasterized in software with github.com/gogpu/gg. A frame
// is cleared to transparent; when the snapshot has data a semi-transparent
// border outlines the display and every segment is stroked; the frame-rate
// label is always drawn so a stalled pipeline is still visible.
//
// Overlay runs on its own cadence, independent of the pipeline tick rate, and
// only reads the latest published snapshot. Finished frames go to a Sink.
package render
