// Package ringbuf provides the fixed-capacity output history that every
// indicator uses to expose its latest value and a bounded number of past
// values. Storage is preallocated at construction; Push and Get are O(1)
// and never allocate.
package ringbuf

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCapacity is returned when a History is created with capacity < 1.
var ErrInvalidCapacity = errors.New("ringbuf: capacity must be at least 1")

// History stores the last Cap() values pushed into it.
// Slot pos always holds the latest value; slot (pos+k) % cap holds the value
// pushed k steps ago. Unwritten slots hold the sentinel passed to New.
//
// Not safe for concurrent use. A History is owned by exactly one indicator.
type History[T any] struct {
	buf  []T
	pos  int // index of the most recently written slot
	none T   // returned for unwritten slots and out-of-range lookups
}

// New creates a History with the given capacity, every slot set to none.
func New[T any](capacity int, none T) (*History[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidCapacity, capacity)
	}
	buf := make([]T, capacity)
	for i := range buf {
		buf[i] = none
	}
	return &History[T]{buf: buf, none: none}, nil
}

// NewFloat creates a float64 History whose sentinel is NaN.
func NewFloat(capacity int) (*History[float64], error) {
	return New(capacity, math.NaN())
}

// Push records v as the latest value, overwriting the oldest slot.
func (h *History[T]) Push(v T) {
	// Move the cursor backward so that older values sit at increasing offsets.
	h.pos = (h.pos + len(h.buf) - 1) % len(h.buf)
	h.buf[h.pos] = v
}

// Get returns the value pushed offset steps before the latest one.
// Offsets outside [0, Cap()) return the sentinel rather than failing.
func (h *History[T]) Get(offset int) T {
	if offset < 0 || offset >= len(h.buf) {
		return h.none
	}
	return h.buf[(h.pos+offset)%len(h.buf)]
}

// Curr returns the latest value, equivalent to Get(0).
func (h *History[T]) Curr() T {
	return h.buf[h.pos]
}

// Cap returns the number of slots.
func (h *History[T]) Cap() int {
	return len(h.buf)
}
