package pricing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRegime is returned for any tax regime value outside the known set.
var ErrInvalidRegime = errors.New("invalid tax regime")

// Regime is the fiscal framework of the company that manufactures the product.
type Regime string

const (
	RegimeSimples        Regime = "SIMPLES"
	RegimePresumedProfit Regime = "PRESUMED_PROFIT"
	RegimeRealProfit     Regime = "REAL_PROFIT"
)

// legacyRegimeCodes maps the codes older company records were stored with.
var legacyRegimeCodes = map[string]Regime{
	"LUCRO_PRESUMIDO": RegimePresumedProfit,
	"LUCRO_REAL":      RegimeRealProfit,
}

// ParseRegime normalizes a persisted regime code. Unknown values fail with ErrInvalidRegime.
func ParseRegime(raw string) (Regime, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))

	if r := Regime(code); r.Valid() {
		return r, nil
	}
	if r, ok := legacyRegimeCodes[code]; ok {
		return r, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidRegime, raw)
}

// Valid reports whether r is one of the known regimes.
func (r Regime) Valid() bool {
	switch r {
	case RegimeSimples, RegimePresumedProfit, RegimeRealProfit:
		return true
	default:
		return false
	}
}

func (r Regime) String() string {
	return string(r)
}
