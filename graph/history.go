package graph

// HistoryRing keeps the chain input of the last depth+1 frames, the current
// frame included. Pushing into a full ring evicts the oldest frame.
//
// The zero value is not usable; call NewHistoryRing. A HistoryRing is not
// safe for concurrent use.
type HistoryRing[T any] struct {
	slots []T
	head  int // index of the most recent frame
	n     int
}

// NewHistoryRing returns an empty ring for a pipeline with the given history
// depth.
func NewHistoryRing[T any](depth int) *HistoryRing[T] {
	return &HistoryRing[T]{slots: make([]T, max(depth, 0)+1), head: -1}
}

// Push records the newest frame. When the ring was full, the evicted frame
// is returned so the caller can recycle it.
func (r *HistoryRing[T]) Push(v T) (evicted T, ok bool) {
	r.head = (r.head + 1) % len(r.slots)
	if r.n == len(r.slots) {
		evicted, ok = r.slots[r.head], true
	} else {
		r.n++
	}
	r.slots[r.head] = v
	return evicted, ok
}

// At returns the frame d frames ago; At(0) is the current frame.
func (r *HistoryRing[T]) At(d int) (T, bool) {
	var zero T
	if d < 0 || d >= r.n {
		return zero, false
	}
	i := (r.head - d + len(r.slots)) % len(r.slots)
	return r.slots[i], true
}

// Len returns the number of frames held.
func (r *HistoryRing[T]) Len() int { return r.n }

// Cap returns depth+1.
func (r *HistoryRing[T]) Cap() int { return len(r.slots) }

// Reset drops every frame and returns them oldest first.
func (r *HistoryRing[T]) Reset() []T {
	out := make([]T, 0, r.n)
	for d := r.n - 1; d >= 0; d-- {
		v, _ := r.At(d)
		out = append(out, v)
	}
	var zero T
	for i := range r.slots {
		r.slots[i] = zero
	}
	r.head, r.n = -1, 0
	return out
}
