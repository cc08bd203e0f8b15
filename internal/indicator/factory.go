package indicator

import (
	"fmt"
	"strings"
)

// Defaults applied by New when a config field is left unset.
const (
	DefaultMemSize   = 1
	DefaultSmoothing = 2.0
	DefaultZ         = 2.0
)

// defaultMACDPeriods are the conventional short, long and signal periods.
var defaultMACDPeriods = [3]int{12, 26, 9}

// IndicatorConfig specifies a single indicator to compute.
// Type is one of SMA, EMA, SMMA, VAR, STDDEV, RSI, MACD, BOLL, ATR, OBV, STOCH.
// Periods carries MACD's short/long/signal; other types use Period.
// DOF applies to VAR, STDDEV and BOLL, Smoothing to EMA and MACD, Z to BOLL.
// Smoothing and Z are pointers so an explicit zero is kept; nil takes the default.
type IndicatorConfig struct {
	Type      string   `yaml:"type"`
	Period    int      `yaml:"period"`
	Periods   []int    `yaml:"periods,omitempty"`
	MemSize   int      `yaml:"mem_size,omitempty"`
	DOF       int      `yaml:"dof,omitempty"`
	Smoothing *float64 `yaml:"smoothing,omitempty"`
	Z         *float64 `yaml:"z,omitempty"`
}

// resolved is an IndicatorConfig with every optional field filled.
type resolved struct {
	Type      string
	Period    int
	Periods   []int
	MemSize   int
	DOF       int
	Smoothing float64
	Z         float64
}

// withDefaults fills unset optional fields.
func (cfg IndicatorConfig) withDefaults() resolved {
	c := resolved{
		Type:      strings.ToUpper(strings.TrimSpace(cfg.Type)),
		Period:    cfg.Period,
		Periods:   cfg.Periods,
		MemSize:   cfg.MemSize,
		DOF:       cfg.DOF,
		Smoothing: DefaultSmoothing,
		Z:         DefaultZ,
	}
	if c.MemSize == 0 {
		c.MemSize = DefaultMemSize
	}
	if cfg.Smoothing != nil {
		c.Smoothing = *cfg.Smoothing
	}
	if cfg.Z != nil {
		c.Z = *cfg.Z
	}
	if c.Period == 0 && len(c.Periods) > 0 && c.Type != "MACD" {
		c.Period = c.Periods[0]
	}
	if c.Type == "MACD" && len(c.Periods) == 0 {
		c.Periods = append([]int(nil), defaultMACDPeriods[:]...)
	}
	return c
}

// New constructs the indicator described by cfg.
func New(cfg IndicatorConfig) (Indicator, error) {
	c := cfg.withDefaults()
	switch c.Type {
	case "SMA":
		return wrap(NewSMA(c.Period, c.MemSize))
	case "EMA":
		return wrap(NewEMA(c.Period, c.MemSize, c.Smoothing))
	case "SMMA":
		return wrap(NewSMMA(c.Period, c.MemSize))
	case "VAR":
		return wrap(NewVariance(c.Period, c.MemSize, c.DOF))
	case "STDDEV":
		return wrap(NewStdDev(c.Period, c.MemSize, c.DOF))
	case "RSI":
		return wrap(NewRSI(c.Period, c.MemSize))
	case "MACD":
		if len(c.Periods) != 3 {
			return nil, fmt.Errorf("indicator: MACD needs 3 periods (short/long/signal), got %d", len(c.Periods))
		}
		return wrap(NewMACD(c.Periods[0], c.Periods[1], c.Periods[2], c.MemSize, c.Smoothing))
	case "BOLL":
		return wrap(NewBollingerBands(c.Period, c.MemSize, c.DOF, c.Z))
	case "ATR":
		return wrap(NewATR(c.Period, c.MemSize))
	case "OBV":
		return wrap(NewOBV(c.MemSize))
	case "STOCH":
		return wrap(NewStochastic(c.Period, c.MemSize))
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, cfg.Type)
}

// wrap keeps a failed constructor from leaking a typed nil into the interface.
func wrap[T Indicator](ind T, err error) (Indicator, error) {
	if err != nil {
		return nil, err
	}
	return ind, nil
}

// ValidateConfigs checks every config by constructing it once.
func ValidateConfigs(configs []IndicatorConfig) error {
	for i, cfg := range configs {
		if _, err := New(cfg); err != nil {
			return fmt.Errorf("indicator config #%d (%s): %w", i, cfg.Type, err)
		}
	}
	return nil
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	buf := [20]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
