package indicator

import (
	"math"

	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// Bands is one Bollinger Bands output triple.
type Bands struct {
	Mid   float64
	Upper float64
	Lower float64
}

func nanBands() Bands {
	return Bands{Mid: math.NaN(), Upper: math.NaN(), Lower: math.NaN()}
}

// BollingerBands composes an SMA and a StdDev over the same period.
// Upper and Lower sit z standard deviations from the mean.
type BollingerBands struct {
	period int
	z      float64
	mean   *SMA
	std    *StdDev
	count  int

	out *ringbuf.History[Bands]
}

// NewBollingerBands creates Bollinger Bands, conventionally (20, dof 1, z 2.0).
func NewBollingerBands(period, memSize, dof int, z float64) (*BollingerBands, error) {
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	if err := checkMultiplier(z); err != nil {
		return nil, err
	}
	mean, err := NewSMA(period, 1)
	if err != nil {
		return nil, err
	}
	std, err := NewStdDev(period, 1, dof)
	if err != nil {
		return nil, err
	}
	out, err := ringbuf.New(memSize, nanBands())
	if err != nil {
		return nil, err
	}
	return &BollingerBands{period: period, z: z, mean: mean, std: std, out: out}, nil
}

// Update feeds one sample.
func (b *BollingerBands) Update(x float64) {
	b.mean.Update(x)
	b.std.Update(x)
	b.count++

	if b.count < b.period {
		b.out.Push(nanBands())
		return
	}
	mid := b.mean.Curr()
	width := b.z * b.std.Curr()
	b.out.Push(Bands{Mid: mid, Upper: mid + width, Lower: mid - width})
}

func (b *BollingerBands) Curr() Bands          { return b.out.Curr() }
func (b *BollingerBands) Get(offset int) Bands { return b.out.Get(offset) }
func (b *BollingerBands) Ready() bool          { return b.count >= b.period }

func (b *BollingerBands) Name() string { return "BOLL_" + itoa(b.period) }

func (b *BollingerBands) UpdateBar(bar model.Bar) { b.Update(bar.Close) }

func (b *BollingerBands) Fields() []model.Field {
	v := b.Curr()
	return []model.Field{
		{Name: "mid", Value: v.Mid},
		{Name: "upper", Value: v.Upper},
		{Name: "lower", Value: v.Lower},
	}
}
