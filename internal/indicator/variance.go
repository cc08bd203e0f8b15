package indicator

import (
	"math"

	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// Variance calculates a moving variance over a rolling window.
//
// The mean comes from an owned SMA. Once the window is full the sum of
// squared deviations is recomputed by a full pass on every update rather
// than maintained incrementally, so long streams do not accumulate drift.
// The divisor is period - dof (dof 0 for population, 1 for sample).
type Variance struct {
	period int
	dof    int
	mean   *SMA
	window []float64
	cursor int
	filled int

	out *ringbuf.History[float64]
}

// NewVariance creates a moving variance.
func NewVariance(period, memSize, dof int) (*Variance, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	if err := checkDOF(dof, period); err != nil {
		return nil, err
	}
	mean, err := NewSMA(period, 1)
	if err != nil {
		return nil, err
	}
	out, err := ringbuf.NewFloat(memSize)
	if err != nil {
		return nil, err
	}
	return &Variance{
		period: period,
		dof:    dof,
		mean:   mean,
		window: make([]float64, period),
		out:    out,
	}, nil
}

// Update feeds one sample.
func (v *Variance) Update(x float64) {
	v.mean.Update(x)
	v.window[v.cursor] = x
	v.cursor = (v.cursor + 1) % v.period
	if v.filled < v.period {
		v.filled++
	}
	if v.filled < v.period {
		v.out.Push(math.NaN())
		return
	}

	m := v.mean.Curr()
	var ss float64
	for _, w := range v.window {
		d := w - m
		ss += d * d
	}
	v.out.Push(ss / float64(v.period-v.dof))
}

func (v *Variance) Curr() float64          { return v.out.Curr() }
func (v *Variance) Get(offset int) float64 { return v.out.Get(offset) }
func (v *Variance) Ready() bool            { return v.filled >= v.period }

func (v *Variance) Name() string { return "VAR_" + itoa(v.period) }

func (v *Variance) UpdateBar(bar model.Bar) { v.Update(bar.Close) }

func (v *Variance) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: v.Curr()}}
}

// StdDev is the square root of a moving Variance. NaN propagates.
type StdDev struct {
	variance *Variance
	out      *ringbuf.History[float64]
}

// NewStdDev creates a moving standard deviation.
func NewStdDev(period, memSize, dof int) (*StdDev, error) {
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	variance, err := NewVariance(period, 1, dof)
	if err != nil {
		return nil, err
	}
	out, err := ringbuf.NewFloat(memSize)
	if err != nil {
		return nil, err
	}
	return &StdDev{variance: variance, out: out}, nil
}

// Update feeds one sample.
func (s *StdDev) Update(x float64) {
	s.variance.Update(x)
	s.out.Push(math.Sqrt(s.variance.Curr()))
}

func (s *StdDev) Curr() float64          { return s.out.Curr() }
func (s *StdDev) Get(offset int) float64 { return s.out.Get(offset) }
func (s *StdDev) Ready() bool            { return s.variance.Ready() }

func (s *StdDev) Name() string { return "STDDEV_" + itoa(s.variance.period) }

func (s *StdDev) UpdateBar(bar model.Bar) { s.Update(bar.Close) }

func (s *StdDev) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: s.Curr()}}
}
