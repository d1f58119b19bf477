package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	divisorPlaces = 4
	moneyPlaces   = 2
)

// Money is a currency amount that always serializes with two decimal places.
type Money struct{ decimal.Decimal }

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed(moneyPlaces))
}

// Ratio is the applied divisor; it always serializes with four decimal places.
type Ratio struct{ decimal.Decimal }

func (r Ratio) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.StringFixed(divisorPlaces))
}

// MarshalJSON writes rates as plain JSON numbers.
func (r Rates) MarshalJSON() ([]byte, error) {
	num := func(d decimal.Decimal) json.Number { return json.Number(d.String()) }
	return json.Marshal(struct {
		ICMSOut             json.Number `json:"icmsOut"`
		PISOut              json.Number `json:"pisOut"`
		COFINSOut           json.Number `json:"cofinsOut"`
		Commission          json.Number `json:"commission"`
		Marketing           json.Number `json:"marketing"`
		FixedCostAllocation json.Number `json:"fixedCostAllocation"`
		FinancialCost       json.Number `json:"financialCost"`
		AdministrativeCost  json.Number `json:"administrativeCost"`
		ProfitMargin        json.Number `json:"profitMargin"`
		FreightValue        json.Number `json:"freightValue"`
	}{
		ICMSOut:             num(r.ICMSOut),
		PISOut:              num(r.PISOut),
		COFINSOut:           num(r.COFINSOut),
		Commission:          num(r.Commission),
		Marketing:           num(r.Marketing),
		FixedCostAllocation: num(r.FixedCostAllocation),
		FinancialCost:       num(r.FinancialCost),
		AdministrativeCost:  num(r.AdministrativeCost),
		ProfitMargin:        num(r.ProfitMargin),
		FreightValue:        num(r.FreightValue),
	})
}

// Costs is the cost side of a pricing result.
type Costs struct {
	IndustrialTotal Money `json:"industrialTotal"`
	Freight         Money `json:"freight"`
}

// Outcome is the price side of a pricing result.
type Outcome struct {
	SuggestedPrice    Money `json:"suggestedPrice"`
	NetProfitAbsolute Money `json:"netProfitAbsolute"`
}

// Result is the full breakdown handed back to callers.
type Result struct {
	Status         Status  `json:"status"`
	Regime         Regime  `json:"regime"`
	ChannelName    string  `json:"channelName"`
	AppliedDivisor Ratio   `json:"appliedDivisor"`
	Rates          Rates   `json:"rates"`
	Costs          Costs   `json:"costs"`
	Outcome        Outcome `json:"result"`
}

// Compose assembles the result. Rounding happens here and nowhere else.
func Compose(regime Regime, channelName string, rates Rates, industrialCost decimal.Decimal, sol Solution) Result {
	profit := sol.Price.Mul(rates.ProfitMargin).Div(hundred)

	return Result{
		Status:         sol.Status,
		Regime:         regime,
		ChannelName:    channelName,
		AppliedDivisor: Ratio{sol.Divisor.Round(divisorPlaces)},
		Rates:          rates,
		Costs: Costs{
			IndustrialTotal: Money{industrialCost.Round(moneyPlaces)},
			Freight:         Money{rates.FreightValue.Round(moneyPlaces)},
		},
		Outcome: Outcome{
			SuggestedPrice:    Money{sol.Price.Round(moneyPlaces)},
			NetProfitAbsolute: Money{profit.Round(moneyPlaces)},
		},
	}
}
