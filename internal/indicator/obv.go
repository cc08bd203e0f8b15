package indicator

import (
	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// OBV calculates On-Balance Volume: a running total that adds volume on
// an up close and subtracts it on a down close. The first sample seeds
// the total at 0; there is no window and no warm-up after that.
type OBV struct {
	total     float64
	lastClose float64
	seeded    bool

	out *ringbuf.History[float64]
}

// NewOBV creates an OBV that remembers memSize outputs.
func NewOBV(memSize int) (*OBV, error) {
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	out, err := ringbuf.NewFloat(memSize)
	if err != nil {
		return nil, err
	}
	return &OBV{out: out}, nil
}

// Update feeds one bar's close and volume.
func (o *OBV) Update(close, volume float64) {
	switch {
	case !o.seeded:
		o.seeded = true
		o.total = 0
	case close > o.lastClose:
		o.total += volume
	case close < o.lastClose:
		o.total -= volume
	}
	o.lastClose = close
	o.out.Push(o.total)
}

func (o *OBV) Curr() float64          { return o.out.Curr() }
func (o *OBV) Get(offset int) float64 { return o.out.Get(offset) }
func (o *OBV) Ready() bool            { return o.seeded }

func (o *OBV) Name() string { return "OBV" }

func (o *OBV) UpdateBar(bar model.Bar) { o.Update(bar.Close, bar.Volume) }

func (o *OBV) Fields() []model.Field {
	return []model.Field{{Name: "value", Value: o.Curr()}}
}

// OBVInt is OBV over integer volumes. Its history holds ringbuf.Avail
// values, so "no output yet" can never collide with a real total.
type OBVInt struct {
	total     int64
	lastClose float64
	seeded    bool

	out *ringbuf.History[ringbuf.Avail[int64]]
}

// NewOBVInt creates an integer OBV that remembers memSize outputs.
func NewOBVInt(memSize int) (*OBVInt, error) {
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	out, err := ringbuf.NewAvail[int64](memSize)
	if err != nil {
		return nil, err
	}
	return &OBVInt{out: out}, nil
}

// Update feeds one bar's close and volume.
func (o *OBVInt) Update(close float64, volume int64) {
	switch {
	case !o.seeded:
		o.seeded = true
		o.total = 0
	case close > o.lastClose:
		o.total += volume
	case close < o.lastClose:
		o.total -= volume
	}
	o.lastClose = close
	o.out.Push(ringbuf.Available(o.total))
}

func (o *OBVInt) Curr() ringbuf.Avail[int64]          { return o.out.Curr() }
func (o *OBVInt) Get(offset int) ringbuf.Avail[int64] { return o.out.Get(offset) }
func (o *OBVInt) Ready() bool                         { return o.seeded }
