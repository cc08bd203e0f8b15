package model

import "time"

// Bar is one OHLCV sample for a single symbol. Indicators consume bars in
// time order; feeding them out of order silently yields a result computed as
// if that order were the true chronology.
type Bar struct {
	Symbol string    `json:"symbol"`
	TS     time.Time `json:"ts"` // bar open time (UTC)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Key returns the key the engine groups indicator state by.
func (b *Bar) Key() string {
	return b.Symbol
}
