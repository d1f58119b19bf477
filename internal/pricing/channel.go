package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SalesChannel is a route to market as configured by the company. Percentages
// are on a 0-100 scale and any of them may be unset.
type SalesChannel struct {
	ID        int64
	CompanyID int64
	Name      string

	ICMSOut             decimal.NullDecimal
	PISOut              decimal.NullDecimal
	COFINSOut           decimal.NullDecimal
	IPIOut              decimal.NullDecimal
	DIFALOut            decimal.NullDecimal
	IRCSLL              decimal.NullDecimal
	Commission          decimal.NullDecimal
	Marketing           decimal.NullDecimal
	FreightPercent      decimal.NullDecimal
	DefaultRate         decimal.NullDecimal
	FinancialCost       decimal.NullDecimal
	FixedCostAllocation decimal.NullDecimal
	FixedExpensesRate   decimal.NullDecimal
	PayrollRate         decimal.NullDecimal
	AdministrativeCost  decimal.NullDecimal
	ProfitMargin        decimal.NullDecimal

	FreightValue decimal.NullDecimal
}

// Rates is the normalized rate set the solver works with.
type Rates struct {
	ICMSOut             decimal.Decimal `json:"icmsOut"`
	PISOut              decimal.Decimal `json:"pisOut"`
	COFINSOut           decimal.Decimal `json:"cofinsOut"`
	Commission          decimal.Decimal `json:"commission"`
	Marketing           decimal.Decimal `json:"marketing"`
	FixedCostAllocation decimal.Decimal `json:"fixedCostAllocation"`
	FinancialCost       decimal.Decimal `json:"financialCost"`
	AdministrativeCost  decimal.Decimal `json:"administrativeCost"`
	ProfitMargin        decimal.Decimal `json:"profitMargin"`
	FreightValue        decimal.Decimal `json:"freightValue"`
}

func orZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

// LoadRates normalizes ch for regime. PIS and COFINS are only itemized at the
// channel under REAL_PROFIT; the simplified regimes carry them inside their unified tax.
func LoadRates(regime Regime, ch SalesChannel) (Rates, error) {
	rates := Rates{
		ICMSOut:             orZero(ch.ICMSOut),
		PISOut:              decimal.Zero,
		COFINSOut:           decimal.Zero,
		Commission:          orZero(ch.Commission),
		Marketing:           orZero(ch.Marketing),
		FixedCostAllocation: orZero(ch.FixedCostAllocation),
		FinancialCost:       orZero(ch.FinancialCost),
		AdministrativeCost:  orZero(ch.AdministrativeCost),
		ProfitMargin:        orZero(ch.ProfitMargin),
		FreightValue:        orZero(ch.FreightValue),
	}

	switch regime {
	case RegimeRealProfit:
		rates.PISOut = orZero(ch.PISOut)
		rates.COFINSOut = orZero(ch.COFINSOut)
	case RegimeSimples, RegimePresumedProfit:
	default:
		return Rates{}, fmt.Errorf("%w: %q", ErrInvalidRegime, string(regime))
	}

	return rates, nil
}

// TaxPercent is the output-tax share of the sale price.
func (r Rates) TaxPercent() decimal.Decimal {
	return r.ICMSOut.Add(r.PISOut).Add(r.COFINSOut)
}

// OperatingPercent is the operating-cost share of the sale price.
func (r Rates) OperatingPercent() decimal.Decimal {
	return decimal.Sum(r.Commission, r.Marketing, r.FixedCostAllocation, r.FinancialCost, r.AdministrativeCost)
}

// DeductionPercent is everything taken out of the sale price, margin included.
func (r Rates) DeductionPercent() decimal.Decimal {
	return r.TaxPercent().Add(r.OperatingPercent()).Add(r.ProfitMargin)
}
