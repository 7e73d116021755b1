// Package geometry provides the segment type shared by every stage of the
// overlay pipeline and the pure functions used to compare segments.
//
// # Coordinate System
//
// Coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// A Segment carries no tag for the space it lives in. Raw detection space
// (capture resolution) and display space (overlay resolution) are never mixed
// within one slice; the scale package is the only place where one becomes the
// other.
//
// # Polar Descriptor
//
// Two segments describe the same visible edge when their polar descriptors are
// close. The descriptor is:
//   - Theta: direction angle atan2(dy, dx) in degrees, normalized into [0, 360)
//   - Rho: perpendicular distance from the origin to the infinite line through
//     the segment
//
// Theta is directional: a segment and its reverse differ by 180 degrees.
// Zero-length segments have no direction and Polar reports ErrDegenerateSegment
// for them instead of dividing by zero.
package geometry
