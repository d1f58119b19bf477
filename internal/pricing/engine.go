// Package pricing derives a recommended sale price from a product's bill of
// materials and a sales channel, using the divisor (percentage-of-price) method.
//
// Everything in this package is pure: callers load the product, the company's
// tax regime and the channel first, then hand plain values to Compute.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Input groups the values one price computation needs.
type Input struct {
	Regime  Regime
	Product Product
	Channel SalesChannel
}

// Engine computes prices. The zero value uses DefaultMinViableDivisor; a
// non-positive divisor is never priced, even when MinViableDivisor is set by hand.
type Engine struct {
	MinViableDivisor decimal.Decimal
}

// ErrInvalidThreshold is returned by NewEngine for a threshold outside (0, 1).
var ErrInvalidThreshold = errors.New("min viable divisor must be between 0 and 1 exclusive")

// NewEngine returns an Engine with the given infeasibility threshold.
func NewEngine(minViableDivisor decimal.Decimal) (Engine, error) {
	if !minViableDivisor.IsPositive() || minViableDivisor.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Engine{}, fmt.Errorf("%w: got %s", ErrInvalidThreshold, minViableDivisor)
	}
	return Engine{MinViableDivisor: minViableDivisor}, nil
}

func (e Engine) minDivisor() decimal.Decimal {
	if e.MinViableDivisor.IsZero() {
		return DefaultMinViableDivisor
	}
	return e.MinViableDivisor
}

// Compute runs the whole pipeline: BOM cost, channel rates, price solve, result.
func (e Engine) Compute(in Input) (Result, error) {
	if !in.Regime.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidRegime, string(in.Regime))
	}

	bom, err := ResolveBOM(in.Regime, in.Product.Lines)
	if err != nil {
		return Result{}, fmt.Errorf("resolve bill of materials for product %d: %w", in.Product.ID, err)
	}

	rates, err := LoadRates(in.Regime, in.Channel)
	if err != nil {
		return Result{}, fmt.Errorf("load rates for channel %d: %w", in.Channel.ID, err)
	}

	sol := Solve(bom.Total, rates, e.minDivisor())
	return Compose(in.Regime, in.Channel.Name, rates, bom.Total, sol), nil
}

// Compute runs the pipeline with the default threshold.
func Compute(in Input) (Result, error) {
	return Engine{}.Compute(in)
}
