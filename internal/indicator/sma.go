package indicator

import (
	"math"

	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// SMA calculates Simple Moving Average over a rolling window.
// The running sum is updated in O(1); the raw window is kept only so the
// value leaving the window can be evicted.
type SMA struct {
	period int
	window []float64 // preallocated circular buffer of raw inputs
	cursor int       // next write position
	filled int       // samples stored, saturates at period
	sum    float64

	out *ringbuf.History[float64]
}

// NewSMA creates an SMA over period samples that remembers memSize outputs.
func NewSMA(period, memSize int) (*SMA, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	out, err := ringbuf.NewFloat(memSize)
	if err != nil {
		return nil, err
	}
	return &SMA{
		period: period,
		window: make([]float64, period),
		out:    out,
	}, nil
}

// Update feeds one sample.
func (s *SMA) Update(x float64) {
	if s.filled < s.period {
		s.window[s.cursor] = x
		s.sum += x
		s.filled++
		s.cursor = (s.cursor + 1) % s.period
		if s.filled < s.period {
			s.out.Push(math.NaN())
			return
		}
		s.out.Push(s.sum / float64(s.period))
		return
	}

	// Evict the slot about to be overwritten before adding the new value.
	s.sum -= s.window[s.cursor]
	s.window[s.cursor] = x
	s.sum += x
	s.cursor = (s.cursor + 1) % s.period
	s.out.Push(s.sum / float64(s.period))
}

// Curr returns the latest average, NaN while warming up.
func (s *SMA) Curr() float64 { return s.out.Curr() }

// Get returns the average from offset updates ago.
func (s *SMA) Get(offset int) float64 { return s.out.Get(offset) }

// Ready returns true once period samples have been seen.
func (s *SMA) Ready() bool { return s.filled >= s.period }

// Peek computes what Curr would be after Update(x) without mutating state.
// Returns NaN if that update would still be in warm-up.
func (s *SMA) Peek(x float64) float64 {
	if s.filled < s.period-1 {
		return math.NaN()
	}
	if s.filled < s.period {
		return (s.sum + x) / float64(s.period)
	}
	return (s.sum - s.window[s.cursor] + x) / float64(s.period)
}

func (s *SMA) Name() string { return "SMA_" + itoa(s.period) }

func (s *SMA) UpdateBar(bar model.Bar) { s.Update(bar.Close) }

func (s *SMA) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: s.Curr()}}
}
