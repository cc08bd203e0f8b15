package indicator

import (
	"math"

	"streamta/internal/model"
	"streamta/internal/ringbuf"
)

// MACDValue is one MACD output triple.
type MACDValue struct {
	MACD   float64 // short EMA - long EMA
	Signal float64 // EMA of MACD
	Hist   float64 // MACD - Signal
}

func nanMACD() MACDValue {
	return MACDValue{MACD: math.NaN(), Signal: math.NaN(), Hist: math.NaN()}
}

// MACD composes a short EMA, a long EMA and a signal EMA of their difference.
//
// MACD becomes defined after max(short, long) samples; Signal and Hist stay
// NaN for signal-1 further samples while the signal EMA seeds.
type MACD struct {
	shortPeriod  int
	longPeriod   int
	signalPeriod int

	short  *EMA
	long   *EMA
	signal *EMA
	count  int

	out *ringbuf.History[MACDValue]
}

// NewMACD creates a MACD, conventionally (12, 26, 9) with smoothing 2.0.
func NewMACD(short, long, signal, memSize int, smoothing float64) (*MACD, error) {
	for _, p := range []int{short, long, signal} {
		if err := checkPeriod(p); err != nil {
			return nil, err
		}
	}
	if err := checkMemSize(memSize); err != nil {
		return nil, err
	}
	shortEMA, err := NewEMA(short, 1, smoothing)
	if err != nil {
		return nil, err
	}
	longEMA, err := NewEMA(long, 1, smoothing)
	if err != nil {
		return nil, err
	}
	signalEMA, err := NewEMA(signal, 1, smoothing)
	if err != nil {
		return nil, err
	}
	out, err := ringbuf.New(memSize, nanMACD())
	if err != nil {
		return nil, err
	}
	return &MACD{
		shortPeriod:  short,
		longPeriod:   long,
		signalPeriod: signal,
		short:        shortEMA,
		long:         longEMA,
		signal:       signalEMA,
		out:          out,
	}, nil
}

// Update feeds one sample.
func (m *MACD) Update(x float64) {
	m.short.Update(x)
	m.long.Update(x)
	m.count++

	if m.count < max(m.shortPeriod, m.longPeriod) {
		m.out.Push(nanMACD())
		return
	}

	diff := m.short.Curr() - m.long.Curr()
	m.signal.Update(diff)
	sig := m.signal.Curr()
	m.out.Push(MACDValue{MACD: diff, Signal: sig, Hist: diff - sig})
}

func (m *MACD) Curr() MACDValue          { return m.out.Curr() }
func (m *MACD) Get(offset int) MACDValue { return m.out.Get(offset) }
func (m *MACD) Ready() bool              { return m.signal.Ready() }

func (m *MACD) Name() string {
	return "MACD_" + itoa(m.shortPeriod) + "_" + itoa(m.longPeriod) + "_" + itoa(m.signalPeriod)
}

func (m *MACD) UpdateBar(bar model.Bar) { m.Update(bar.Close) }

func (m *MACD) Fields() []model.Field {
	v := m.Curr()
	return []model.Field{
		{Name: "macd", Value: v.MACD},
		{Name: "signal", Value: v.Signal},
		{Name: "hist", Value: v.Hist},
	}
}
