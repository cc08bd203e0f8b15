package indicator

import (
	"streamta/internal/model"
)

// SMMA calculates Smoothed Moving Average (Wilder-style smoothing).
// First value is SMA(period), then SMMA = (prev*(period-1) + x) / period,
// which is an EMA with α = 1/period.
type SMMA struct {
	ema *EMA
}

// NewSMMA creates an SMMA over period samples.
func NewSMMA(period, memSize int) (*SMMA, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	// α = smoothing/(1+period) = 1/period
	ema, err := NewEMA(period, memSize, float64(1+period)/float64(period))
	if err != nil {
		return nil, err
	}
	return &SMMA{ema: ema}, nil
}

func (s *SMMA) Update(x float64)        { s.ema.Update(x) }
func (s *SMMA) Curr() float64           { return s.ema.Curr() }
func (s *SMMA) Get(offset int) float64  { return s.ema.Get(offset) }
func (s *SMMA) Ready() bool             { return s.ema.Ready() }
func (s *SMMA) Peek(x float64) float64  { return s.ema.Peek(x) }
func (s *SMMA) Name() string            { return "SMMA_" + itoa(s.ema.period) }
func (s *SMMA) UpdateBar(bar model.Bar) { s.Update(bar.Close) }

func (s *SMMA) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: s.Curr()}}
}
