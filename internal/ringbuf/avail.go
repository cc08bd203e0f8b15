package ringbuf

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Avail tags a value with its availability. It is the sentinel for result
// types that have no NaN, so "not yet computed" never collides with real data.
type Avail[T any] struct {
	Value T
	OK    bool
}

// Available wraps a computed value.
func Available[T any](v T) Avail[T] {
	return Avail[T]{Value: v, OK: true}
}

// Unavailable returns the "no value" marker.
func Unavailable[T any]() Avail[T] {
	return Avail[T]{}
}

// NewAvail creates a History of tagged values, all initially unavailable.
func NewAvail[T any](capacity int) (*History[Avail[T]], error) {
	return New(capacity, Unavailable[T]())
}

// Extremes scans the latest n slots of h and returns their minimum, maximum
// and how many non-NaN values contributed. Sentinel slots are skipped.
// When count is 0, lo is +Inf and hi is -Inf.
func Extremes[T constraints.Float](h *History[T], n int) (lo, hi T, count int) {
	if n > h.Cap() {
		n = h.Cap()
	}
	lo, hi = T(math.Inf(1)), T(math.Inf(-1))
	for k := 0; k < n; k++ {
		v := h.Get(k)
		if v != v { // NaN
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		count++
	}
	return lo, hi, count
}
