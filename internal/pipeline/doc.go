// Package pipeline runs the per-tick capture, detect, normalize, filter and
// publish cycle that feeds the overlay.
//
// # Tick
//
// Each tick walks the stages Idle, Capturing, Detecting, Normalizing,
// Filtering, Published and back to Idle:
//
//  1. Record the tick timestamp. If time has passed since the previous tick
//     the frame-rate estimate becomes 1/elapsed; otherwise it is unchanged.
//  2. Capture a frame from the Source.
//  3. Hand the frame and detection Params, untouched, to the Oracle.
//  4. Compute scale factors from capture and display resolution and map the
//     raw segments into display space.
//  5. Remove near-duplicates.
//  6. Publish a Snapshot.
//
// Capture and detection share a per-tick budget, one second unless
// configured. It bounds a collaborator that hangs and is unrelated to the
// tick period: a tick that runs past the period still publishes its lines.
// A tick never fails the process: any error publishes an empty Snapshot with
// Show cleared and is returned to the caller for diagnostics.
//
// # Publishing
//
// The latest Snapshot is held behind an atomic pointer. Readers call Latest
// from any goroutine and always see a complete Snapshot; the Lines slice of a
// published Snapshot is never modified afterwards.
//
// # Scheduling
//
// Run drives Tick from a ticker. When a tick overruns the next scheduled
// time, the pending tick is dropped rather than run late, so the loop never
// builds a backlog.
package pipeline
