package model

import (
	"math"
	"time"
)

// Field is one named output of an indicator. Single-valued indicators
// report a single "value" field; composites report one field per line
// (e.g. "macd", "signal", "hist").
type Field struct {
	Name  string
	Value float64 // NaN while the line is still warming up
}

// IndicatorResult holds the outputs of one indicator after one bar.
type IndicatorResult struct {
	Name   string    // e.g. "SMA_20", "MACD_12_26_9"
	Symbol string    // bar symbol that produced this result
	TS     time.Time // bar timestamp that produced this result
	Fields []Field
	Ready  bool // true once every field is defined
	Live   bool // true for previews computed from a forming bar
}

// Value returns the named field, or NaN if the result has no such field.
func (r *IndicatorResult) Value(name string) float64 {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return math.NaN()
}

// Primary returns the first field's value, or NaN for an empty result.
func (r *IndicatorResult) Primary() float64 {
	if len(r.Fields) == 0 {
		return math.NaN()
	}
	return r.Fields[0].Value
}
