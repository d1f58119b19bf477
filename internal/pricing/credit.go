package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Recoverable input tax rates, applied to the material's raw price.
var (
	icmsCreditRate   = decimal.RequireFromString("0.18")
	pisCreditRate    = decimal.RequireFromString("0.0165")
	cofinsCreditRate = decimal.RequireFromString("0.0760")
)

// InputCredit returns the tax credit a company under regime recovers when buying
// a material at rawPrice.
func InputCredit(regime Regime, rawPrice decimal.Decimal) (decimal.Decimal, error) {
	switch regime {
	case RegimeSimples:
		return decimal.Zero, nil
	case RegimePresumedProfit:
		return rawPrice.Mul(icmsCreditRate), nil
	case RegimeRealProfit:
		pis := rawPrice.Mul(pisCreditRate)
		cofins := rawPrice.Mul(cofinsCreditRate)
		icms := rawPrice.Mul(icmsCreditRate)
		return pis.Add(cofins).Add(icms), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidRegime, string(regime))
	}
}
