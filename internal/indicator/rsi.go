package indicator

import (
	"math"

	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// RSI calculates Relative Strength Index from per-bar open/close moves.
//
// Gains and losses are averaged by two owned SMAs. Zero losses give
// RSI = 100 and zero gains with zero losses give NaN, straight from IEEE
// division.
type RSI struct {
	period int
	gains  *SMA
	losses *SMA

	out *ringbuf.History[float64]
}

// NewRSI creates an RSI over period bars.
func NewRSI(period, memSize int) (*RSI, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	gains, err := NewSMA(period, 1)
	if err != nil {
		return nil, err
	}
	losses, err := NewSMA(period, 1)
	if err != nil {
		return nil, err
	}
	out, err := ringbuf.NewFloat(memSize)
	if err != nil {
		return nil, err
	}
	return &RSI{period: period, gains: gains, losses: losses, out: out}, nil
}

// Update feeds one bar's open and close.
func (r *RSI) Update(open, close float64) {
	diff := close - open
	if diff > 0 {
		r.gains.Update(diff)
		r.losses.Update(0)
	} else {
		r.gains.Update(0)
		r.losses.Update(-diff)
	}

	l := r.losses.Curr()
	if math.IsNaN(l) {
		r.out.Push(math.NaN())
		return
	}
	r.out.Push(100 - 100/(1+r.gains.Curr()/l))
}

func (r *RSI) Curr() float64          { return r.out.Curr() }
func (r *RSI) Get(offset int) float64 { return r.out.Get(offset) }
func (r *RSI) Ready() bool            { return r.losses.Ready() }

func (r *RSI) Name() string { return "RSI_" + itoa(r.period) }

func (r *RSI) UpdateBar(bar model.Bar) { r.Update(bar.Open, bar.Close) }

func (r *RSI) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: r.Curr()}}
}
