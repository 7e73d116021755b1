package metrics

// ring is a fixed-capacity ring buffer for float64 values.
type ring struct {
	data []float64
	pos  int
	full bool
}

func newRing(capacity int) *ring {
	return &ring{data: make([]float64, capacity)}
}

func (r *ring) push(v float64) {
	r.data[r.pos] = v
	r.pos++
	if r.pos >= len(r.data) {
		r.pos = 0
		r.full = true
	}
}

func (r *ring) len() int {
	if r.full {
		return len(r.data)
	}
	return r.pos
}

// slice returns the contents oldest first.
func (r *ring) slice() []float64 {
	out := make([]float64, r.len())
	if r.full {
		n := copy(out, r.data[r.pos:])
		copy(out[n:], r.data[:r.pos])
	} else {
		copy(out, r.data[:r.pos])
	}
	return out
}
