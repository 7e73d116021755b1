package pipeline

import (
	"errors"

	"github.com/ironsheep/edge-overlay/internal/geometry"
	"github.com/ironsheep/edge-overlay/internal/scale"
)

// Error kinds. Tick wraps every failure in one of these so callers can
// classify it with errors.Is.
var (
	// ErrCaptureUnavailable: the Source produced no frame this tick.
	ErrCaptureUnavailable = errors.New("capture unavailable")

	// ErrOracleFailure: detection returned an error or ran out of budget.
	ErrOracleFailure = errors.New("oracle failure")

	// ErrInvalidScale: capture or display resolution gave a non-positive or
	// non-finite scale factor.
	ErrInvalidScale = scale.ErrInvalidScale

	// ErrDegenerateSegment marks zero-length segments. These never fail a
	// tick; the filter drops them and the count appears in the Snapshot.
	ErrDegenerateSegment = geometry.ErrDegenerateSegment
)

// ErrorKind classifies the outcome of a tick.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindCaptureUnavailable
	KindOracleFailure
	KindInvalidScale
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindCaptureUnavailable:
		return "capture_unavailable"
	case KindOracleFailure:
		return "oracle_failure"
	case KindInvalidScale:
		return "invalid_scale"
	default:
		return "other"
	}
}

// MarshalText lets ErrorKind appear by name in JSON.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf classifies err. A nil error is KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrCaptureUnavailable):
		return KindCaptureUnavailable
	case errors.Is(err, ErrOracleFailure):
		return KindOracleFailure
	case errors.Is(err, ErrInvalidScale):
		return KindInvalidScale
	default:
		return KindOther
	}
}
