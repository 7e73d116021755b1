// Package capture supplies the frames the overlay pipeline analyzes.
//
// A Source produces one Frame per call. Screen grabs a physical display with
// github.com/kbinani/screenshot; Files replays still images from disk, which
// keeps headless runs and tests independent of a display server. Scaled and
// Cropped wrap another Source and transform its frames with
// github.com/disintegration/imaging before detection sees them.
//
// Capture failures are ordinary per-tick errors. The pipeline treats any error
// from a Source as "capture unavailable" for that tick and carries on.
package capture
