package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrMaterialNotFound is returned when a BOM line references a material that could not be resolved.
var ErrMaterialNotFound = errors.New("material not found")

var hundred = decimal.NewFromInt(100)

// Material is a purchasable input. IsNational selects which of the two prices is paid.
type Material struct {
	ID            int64
	Name          string
	PriceNational decimal.Decimal
	PriceImported decimal.Decimal
	IPIPercent    decimal.Decimal
	IsNational    bool
}

// RawPrice returns the active purchase price.
func (m Material) RawPrice() decimal.Decimal {
	if m.IsNational {
		return m.PriceNational
	}
	return m.PriceImported
}

// BOMLine is one material requirement of a product. Material is nil when the
// referenced id could not be resolved.
type BOMLine struct {
	MaterialID int64
	Material   *Material
	Quantity   decimal.Decimal
}

// Product is a manufactured item and its bill of materials.
type Product struct {
	ID        int64
	CompanyID int64
	Name      string
	SKU       string
	Lines     []BOMLine
}

// LineCost is the resolved cost of one BOM line.
type LineCost struct {
	MaterialID  int64
	RawPrice    decimal.Decimal
	IPI         decimal.Decimal
	Credit      decimal.Decimal
	NetUnitCost decimal.Decimal
	Quantity    decimal.Decimal
	Total       decimal.Decimal
}

// BOMCost is the industrial cost of one unit of product.
type BOMCost struct {
	Lines []LineCost
	Total decimal.Decimal
}

// NetUnitCost computes the cost of one unit of m after IPI and the regime's recoverable credits.
// The result is not clamped: a credit larger than price plus IPI yields a negative cost.
func NetUnitCost(regime Regime, m Material) (LineCost, error) {
	raw := m.RawPrice()
	ipi := raw.Mul(m.IPIPercent.Div(hundred))

	credit, err := InputCredit(regime, raw)
	if err != nil {
		return LineCost{}, err
	}

	return LineCost{
		MaterialID:  m.ID,
		RawPrice:    raw,
		IPI:         ipi,
		Credit:      credit,
		NetUnitCost: raw.Add(ipi).Sub(credit),
	}, nil
}

// ResolveBOM sums the net cost of every line. An empty BOM costs zero.
func ResolveBOM(regime Regime, lines []BOMLine) (BOMCost, error) {
	if !regime.Valid() {
		return BOMCost{}, fmt.Errorf("%w: %q", ErrInvalidRegime, string(regime))
	}

	cost := BOMCost{
		Lines: make([]LineCost, 0, len(lines)),
		Total: decimal.Zero,
	}
	for _, line := range lines {
		if line.Material == nil {
			return BOMCost{}, fmt.Errorf("%w: id %d", ErrMaterialNotFound, line.MaterialID)
		}

		lc, err := NetUnitCost(regime, *line.Material)
		if err != nil {
			return BOMCost{}, err
		}
		lc.Quantity = line.Quantity
		lc.Total = lc.NetUnitCost.Mul(line.Quantity)

		cost.Lines = append(cost.Lines, lc)
		cost.Total = cost.Total.Add(lc.Total)
	}

	return cost, nil
}
