package indicator

import (
	"math"

	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// Stochastic calculates the Stochastic Oscillator: where x sits within the
// min/max range of the previous period inputs, scaled to 0..100.
//
// The range is found by scanning the raw window on every update. The window
// is sized by period and the output history by memSize; the two are
// independent. A flat window divides by zero and yields ±Inf or NaN, and a
// NaN anywhere in the window makes the output NaN.
type Stochastic struct {
	period int
	window *ringbuf.History[float64]
	filled int
	ready  bool

	out *ringbuf.History[float64]
}

// NewStochastic creates a Stochastic Oscillator over period inputs.
func NewStochastic(period, memSize int) (*Stochastic, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	window, err := ringbuf.NewFloat(period)
	if err != nil {
		return nil, err
	}
	out, err := ringbuf.NewFloat(memSize)
	if err != nil {
		return nil, err
	}
	return &Stochastic{period: period, window: window, out: out}, nil
}

// Update emits the oscillator for x against the current window, then
// pushes x into the window.
func (s *Stochastic) Update(x float64) {
	if s.filled < s.period {
		s.out.Push(math.NaN())
	} else {
		lo, hi, n := ringbuf.Extremes(s.window, s.period)
		if n < s.period {
			s.out.Push(math.NaN())
		} else {
			s.out.Push(100 * (x - lo) / (hi - lo))
		}
		s.ready = true
	}

	s.window.Push(x)
	if s.filled < s.period {
		s.filled++
	}
}

func (s *Stochastic) Curr() float64          { return s.out.Curr() }
func (s *Stochastic) Get(offset int) float64 { return s.out.Get(offset) }

// Ready returns true once an output has been computed against a full window.
func (s *Stochastic) Ready() bool { return s.ready }

func (s *Stochastic) Name() string { return "STOCH_" + itoa(s.period) }

func (s *Stochastic) UpdateBar(bar model.Bar) { s.Update(bar.Close) }

func (s *Stochastic) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: s.Curr()}}
}
