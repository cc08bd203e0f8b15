package indicator

import (
	"math"

	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// EMA calculates Exponential Moving Average.
// O(1) per update; no window storage needed. The first period samples are
// averaged into a simple-mean seed before blending starts.
type EMA struct {
	period int
	alpha  float64 // smoothing / (1 + period)
	prev   float64
	count  int
	sum    float64

	out *ringbuf.History[float64]
}

// NewEMA creates an EMA. smoothing is conventionally 2.0.
func NewEMA(period, memSize int, smoothing float64) (*EMA, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	if err := checkSmoothing(smoothing); err != nil {
		return nil, err
	}
	out, err := ringbuf.NewFloat(memSize)
	if err != nil {
		return nil, err
	}
	return &EMA{
		period: period,
		alpha:  smoothing / float64(1+period),
		out:    out,
	}, nil
}

// Update feeds one sample.
func (e *EMA) Update(x float64) {
	e.count++

	if e.count <= e.period {
		// Accumulate for the simple-mean seed
		e.sum += x
		if e.count < e.period {
			e.out.Push(math.NaN())
			return
		}
		e.prev = e.sum / float64(e.period)
		e.out.Push(e.prev)
		return
	}

	e.prev = x*e.alpha + e.prev*(1-e.alpha)
	e.out.Push(e.prev)
}

func (e *EMA) Curr() float64          { return e.out.Curr() }
func (e *EMA) Get(offset int) float64 { return e.out.Get(offset) }
func (e *EMA) Ready() bool            { return e.count >= e.period }

// Peek computes what Curr would be after Update(x) without mutating state.
func (e *EMA) Peek(x float64) float64 {
	switch {
	case e.count < e.period-1:
		return math.NaN()
	case e.count == e.period-1:
		return (e.sum + x) / float64(e.period)
	}
	return x*e.alpha + e.prev*(1-e.alpha)
}

func (e *EMA) Name() string { return "EMA_" + itoa(e.period) }

func (e *EMA) UpdateBar(bar model.Bar) { e.Update(bar.Close) }

func (e *EMA) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: e.Curr()}}
}
