package pricing

import "github.com/shopspring/decimal"

// Status tells whether a sale price could be derived.
type Status string

const (
	StatusOK         Status = "ok"
	StatusInfeasible Status = "infeasible"
)

// DefaultMinViableDivisor is the smallest divisor still priced. It is a safety
// margin against near-zero and negative divisors, not a derived value.
var DefaultMinViableDivisor = decimal.RequireFromString("0.05")

// Solution is the outcome of solving the price equation.
type Solution struct {
	Price                 decimal.Decimal
	Divisor               decimal.Decimal
	TotalDeductionPercent decimal.Decimal
	Status                Status
}

// Solve finds the price P for which cost + freight plus every percentage of P in
// rates adds up to P, i.e. P = (cost + freight) / (1 - deductions/100).
// A divisor at or below minDivisor is reported as infeasible with a zero price.
// A non-positive divisor is always infeasible, whatever minDivisor is.
func Solve(industrialCost decimal.Decimal, rates Rates, minDivisor decimal.Decimal) Solution {
	deductions := rates.DeductionPercent()
	divisor := decimal.NewFromInt(1).Sub(deductions.Div(hundred))

	sol := Solution{
		Price:                 decimal.Zero,
		Divisor:               divisor,
		TotalDeductionPercent: deductions,
		Status:                StatusInfeasible,
	}
	if divisor.LessThanOrEqual(decimal.Max(minDivisor, decimal.Zero)) {
		return sol
	}

	sol.Price = industrialCost.Add(rates.FreightValue).Div(divisor)
	sol.Status = StatusOK
	return sol
}
