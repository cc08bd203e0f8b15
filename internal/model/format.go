package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// FormatValue renders v with a fixed number of decimal places.
// Warm-up and IEEE special values are rendered as "NaN", "+Inf" and "-Inf"
// since decimal cannot represent them.
func FormatValue(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
