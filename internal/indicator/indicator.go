// Package indicator provides streaming technical indicator calculations.
//
// Every indicator consumes one sample per Update call, performs an O(1)
// (or small fixed O(period)) recurrence and pushes the result into its own
// ring history, readable through Curr and Get. Until an indicator has seen
// enough samples its output is NaN; composites let NaN propagate instead of
// special-casing warm-up. Construction parameters are validated once and
// never change afterwards.
//
// Indicators are not safe for concurrent use; callers feed each instance
// from a single goroutine in time order.
package indicator

import (
	"errors"
	"fmt"
	"math"

	"streamta/internal/model"
)

// Construction errors. Constructors wrap these with the offending value.
var (
	ErrInvalidPeriod     = errors.New("indicator: period must be at least 1")
	ErrInvalidMemSize    = errors.New("indicator: mem size must be at least 1")
	ErrInvalidDOF        = errors.New("indicator: dof must satisfy 0 <= dof < period")
	ErrInvalidSmoothing  = errors.New("indicator: smoothing must be finite and positive")
	ErrInvalidMultiplier = errors.New("indicator: band multiplier must be finite and non-negative")
	ErrUnknownType       = errors.New("indicator: unknown indicator type")
)

// Indicator is the bar-driven view of an indicator used by the Engine.
// Each concrete type maps the bar fields it needs onto its own Update call.
type Indicator interface {
	// Name returns the indicator name including its periods (e.g. "SMA_20").
	Name() string

	// UpdateBar feeds one bar.
	UpdateBar(bar model.Bar)

	// Fields returns the current output lines; NaN while warming up.
	Fields() []model.Field

	// Ready returns true once every output line is defined.
	Ready() bool
}

// Peeker is implemented by indicators that can preview their next value
// without mutating state.
type Peeker interface {
	Peek(x float64) float64
}

func checkPeriod(period int) error {
	if period < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidPeriod, period)
	}
	return nil
}

func checkMemSize(memSize int) error {
	if memSize < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidMemSize, memSize)
	}
	return nil
}

func checkDOF(dof, period int) error {
	if dof < 0 || dof >= period {
		return fmt.Errorf("%w (dof=%d, period=%d)", ErrInvalidDOF, dof, period)
	}
	return nil
}

func checkSmoothing(smoothing float64) error {
	if math.IsNaN(smoothing) || math.IsInf(smoothing, 0) || smoothing <= 0 {
		return fmt.Errorf("%w (got %v)", ErrInvalidSmoothing, smoothing)
	}
	return nil
}

func checkMultiplier(z float64) error {
	if math.IsNaN(z) || math.IsInf(z, 0) || z < 0 {
		return fmt.Errorf("%w (got %v)", ErrInvalidMultiplier, z)
	}
	return nil
}
