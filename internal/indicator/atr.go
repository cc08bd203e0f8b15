package indicator

import (
	"math"

	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// TrueRange returns the largest of high-low, |high-close| and |low-close|.
// Ties go to the earlier candidate in that order.
func TrueRange(high, low, close float64) float64 {
	tr := high - low
	if hc := math.Abs(high - close); hc > tr {
		tr = hc
	}
	if lc := math.Abs(low - close); lc > tr {
		tr = lc
	}
	return tr
}

// ATR calculates Average True Range as an SMA of TrueRange.
type ATR struct {
	period int
	ranges *SMA

	out *ringbuf.History[float64]
}

// NewATR creates an ATR over period bars.
func NewATR(period, memSize int) (*ATR, error) {
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	ranges, err := NewSMA(period, 1)
	if err != nil {
		return nil, err
	}
	out, err := ringbuf.NewFloat(memSize)
	if err != nil {
		return nil, err
	}
	return &ATR{period: period, ranges: ranges, out: out}, nil
}

// Update feeds one bar's high, low and close.
func (a *ATR) Update(high, low, close float64) {
	a.ranges.Update(TrueRange(high, low, close))
	a.out.Push(a.ranges.Curr())
}

func (a *ATR) Curr() float64          { return a.out.Curr() }
func (a *ATR) Get(offset int) float64 { return a.out.Get(offset) }
func (a *ATR) Ready() bool            { return a.ranges.Ready() }

func (a *ATR) Name() string { return "ATR_" + itoa(a.period) }

func (a *ATR) UpdateBar(bar model.Bar) { a.Update(bar.High, bar.Low, bar.Close) }

func (a *ATR) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: a.Curr()}}
}
