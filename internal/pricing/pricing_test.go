package pricing

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func equalDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func nationalMaterial() Material {
	return Material{ID: 1, Name: "Chapa aço", PriceNational: dec("100"), PriceImported: dec("80"), IPIPercent: dec("10"), IsNational: true}
}

func TestNetUnitCost_PerRegime(t *testing.T) {
	m := nationalMaterial()

	simples, err := NetUnitCost(RegimeSimples, m)
	if err != nil {
		t.Fatalf("NetUnitCost simples: %v", err)
	}
	equalDecimal(t, "simples credit", simples.Credit, "0")
	equalDecimal(t, "simples net", simples.NetUnitCost, "110")

	presumed, err := NetUnitCost(RegimePresumedProfit, m)
	if err != nil {
		t.Fatalf("NetUnitCost presumed: %v", err)
	}
	equalDecimal(t, "presumed credit", presumed.Credit, "18")
	equalDecimal(t, "presumed net", presumed.NetUnitCost, "92")

	realProfit, err := NetUnitCost(RegimeRealProfit, m)
	if err != nil {
		t.Fatalf("NetUnitCost real: %v", err)
	}
	equalDecimal(t, "real credit", realProfit.Credit, "27.25")
	equalDecimal(t, "real net", realProfit.NetUnitCost, "82.75")
}

func TestNetUnitCost_UsesImportedPriceWhenNotNational(t *testing.T) {
	m := nationalMaterial()
	m.IsNational = false

	lc, err := NetUnitCost(RegimeSimples, m)
	if err != nil {
		t.Fatalf("NetUnitCost: %v", err)
	}
	equalDecimal(t, "raw", lc.RawPrice, "80")
	equalDecimal(t, "ipi", lc.IPI, "8")
	equalDecimal(t, "net", lc.NetUnitCost, "88")
}

func TestNetUnitCost_NegativeIsNotClamped(t *testing.T) {
	m := Material{PriceNational: dec("100"), IPIPercent: dec("-80"), IsNational: true}

	lc, err := NetUnitCost(RegimeRealProfit, m)
	if err != nil {
		t.Fatalf("NetUnitCost: %v", err)
	}
	equalDecimal(t, "net", lc.NetUnitCost, "-7.25")
}

func TestInputCredit_UnknownRegimeFails(t *testing.T) {
	_, err := InputCredit(Regime("MEI"), dec("100"))
	if !errors.Is(err, ErrInvalidRegime) {
		t.Fatalf("err = %v, want ErrInvalidRegime", err)
	}
}

func TestResolveBOM_SumsLinesTimesQuantity(t *testing.T) {
	steel := nationalMaterial()
	screw := Material{ID: 2, PriceImported: dec("2.50"), IPIPercent: dec("0"), IsNational: false}

	cost, err := ResolveBOM(RegimeSimples, []BOMLine{
		{MaterialID: 1, Material: &steel, Quantity: dec("2")},
		{MaterialID: 2, Material: &screw, Quantity: dec("8")},
	})
	if err != nil {
		t.Fatalf("ResolveBOM: %v", err)
	}

	if len(cost.Lines) != 2 {
		t.Fatalf("expected 2 line costs, got %d", len(cost.Lines))
	}
	equalDecimal(t, "line 1", cost.Lines[0].Total, "220")
	equalDecimal(t, "line 2", cost.Lines[1].Total, "20")
	equalDecimal(t, "total", cost.Total, "240")
}

func TestResolveBOM_EmptyIsZero(t *testing.T) {
	cost, err := ResolveBOM(RegimePresumedProfit, nil)
	if err != nil {
		t.Fatalf("ResolveBOM: %v", err)
	}
	equalDecimal(t, "total", cost.Total, "0")
}

func TestResolveBOM_MissingMaterial(t *testing.T) {
	_, err := ResolveBOM(RegimeSimples, []BOMLine{{MaterialID: 42, Quantity: dec("1")}})
	if !errors.Is(err, ErrMaterialNotFound) {
		t.Fatalf("err = %v, want ErrMaterialNotFound", err)
	}
	if !strings.Contains(err.Error(), "42") {
		t.Fatalf("expected error to name material id, got %v", err)
	}
}

func TestResolveBOM_InvalidRegimeFailsEvenWhenEmpty(t *testing.T) {
	_, err := ResolveBOM(Regime(""), nil)
	if !errors.Is(err, ErrInvalidRegime) {
		t.Fatalf("err = %v, want ErrInvalidRegime", err)
	}
}

func TestParseRegime(t *testing.T) {
	cases := map[string]Regime{
		"SIMPLES":         RegimeSimples,
		" simples ":       RegimeSimples,
		"PRESUMED_PROFIT": RegimePresumedProfit,
		"LUCRO_PRESUMIDO": RegimePresumedProfit,
		"REAL_PROFIT":     RegimeRealProfit,
		"lucro_real":      RegimeRealProfit,
	}
	for raw, want := range cases {
		got, err := ParseRegime(raw)
		if err != nil {
			t.Fatalf("ParseRegime(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseRegime(%q) = %s, want %s", raw, got, want)
		}
	}

	for _, raw := range []string{"", "MEI", "LUCRO"} {
		if _, err := ParseRegime(raw); !errors.Is(err, ErrInvalidRegime) {
			t.Fatalf("ParseRegime(%q) err = %v, want ErrInvalidRegime", raw, err)
		}
	}
}

func TestLoadRates_NullsBecomeZero(t *testing.T) {
	rates, err := LoadRates(RegimeRealProfit, SalesChannel{Name: "vazio"})
	if err != nil {
		t.Fatalf("LoadRates: %v", err)
	}
	equalDecimal(t, "deductions", rates.DeductionPercent(), "0")
	equalDecimal(t, "freight", rates.FreightValue, "0")
}

func TestLoadRates_PISCOFINSOnlyUnderRealProfit(t *testing.T) {
	ch := SalesChannel{ICMSOut: nd("12"), PISOut: nd("1.65"), COFINSOut: nd("7.6")}

	realProfit, err := LoadRates(RegimeRealProfit, ch)
	if err != nil {
		t.Fatalf("LoadRates real: %v", err)
	}
	equalDecimal(t, "real tax", realProfit.TaxPercent(), "21.25")

	for _, regime := range []Regime{RegimeSimples, RegimePresumedProfit} {
		rates, err := LoadRates(regime, ch)
		if err != nil {
			t.Fatalf("LoadRates %s: %v", regime, err)
		}
		equalDecimal(t, string(regime)+" pis", rates.PISOut, "0")
		equalDecimal(t, string(regime)+" cofins", rates.COFINSOut, "0")
		equalDecimal(t, string(regime)+" tax", rates.TaxPercent(), "12")
	}
}

func TestLoadRates_IgnoresNonDivisorFields(t *testing.T) {
	ch := SalesChannel{IPIOut: nd("5"), DIFALOut: nd("4"), IRCSLL: nd("3"), PayrollRate: nd("10"), FixedExpensesRate: nd("8")}

	rates, err := LoadRates(RegimeRealProfit, ch)
	if err != nil {
		t.Fatalf("LoadRates: %v", err)
	}
	equalDecimal(t, "deductions", rates.DeductionPercent(), "0")
}

func scenarioRates() Rates {
	return Rates{
		ICMSOut:             dec("12"),
		PISOut:              decimal.Zero,
		COFINSOut:           decimal.Zero,
		Commission:          dec("3"),
		Marketing:           dec("2"),
		FixedCostAllocation: dec("5"),
		ProfitMargin:        dec("15"),
		FreightValue:        dec("5.00"),
	}
}

func TestSolve_EndToEndScenario(t *testing.T) {
	sol := Solve(dec("82.75"), scenarioRates(), DefaultMinViableDivisor)

	if sol.Status != StatusOK {
		t.Fatalf("status = %s, want ok", sol.Status)
	}
	equalDecimal(t, "deductions", sol.TotalDeductionPercent, "37")
	equalDecimal(t, "divisor", sol.Divisor, "0.63")
	equalDecimal(t, "price", sol.Price.Round(2), "139.29")
}

func TestSolve_InfeasibleAtOrBelowThreshold(t *testing.T) {
	for _, margin := range []string{"74", "73", "78", "100"} {
		rates := scenarioRates()
		// 22 points of taxes and operating costs before margin.
		rates.ProfitMargin = dec(margin)

		sol := Solve(dec("1000"), rates, DefaultMinViableDivisor)
		if sol.Status != StatusInfeasible {
			t.Fatalf("margin %s: status = %s, want infeasible (divisor %s)", margin, sol.Status, sol.Divisor)
		}
		equalDecimal(t, "margin "+margin+" price", sol.Price, "0")
	}
}

func TestSolve_NonPositiveDivisorIgnoresLowThreshold(t *testing.T) {
	cases := []struct {
		margin    string
		threshold string
		divisor   string
	}{
		{margin: "78", threshold: "0", divisor: "0"},
		{margin: "78", threshold: "-0.5", divisor: "0"},
		{margin: "100", threshold: "-0.5", divisor: "-0.22"},
		{margin: "100", threshold: "0", divisor: "-0.22"},
	}

	for _, tc := range cases {
		rates := scenarioRates()
		rates.ProfitMargin = dec(tc.margin)

		sol := Solve(dec("82.75"), rates, dec(tc.threshold))
		if sol.Status != StatusInfeasible {
			t.Fatalf("margin=%s threshold=%s: status = %s, want infeasible", tc.margin, tc.threshold, sol.Status)
		}
		equalDecimal(t, "price", sol.Price, "0")
		equalDecimal(t, "divisor", sol.Divisor, tc.divisor)
	}
}

func TestNewEngine_RejectsThresholdOutsideUnitInterval(t *testing.T) {
	for _, raw := range []string{"-0.5", "0", "1", "1.5"} {
		if _, err := NewEngine(dec(raw)); !errors.Is(err, ErrInvalidThreshold) {
			t.Fatalf("NewEngine(%s): err = %v, want ErrInvalidThreshold", raw, err)
		}
	}

	eng, err := NewEngine(dec("0.05"))
	if err != nil {
		t.Fatalf("NewEngine(0.05): %v", err)
	}
	equalDecimal(t, "threshold", eng.MinViableDivisor, "0.05")
}

func TestEngine_HandBuiltNegativeThresholdStillInfeasible(t *testing.T) {
	ch := channelForScenario()
	ch.ProfitMargin = nd("78") // divisor 0

	eng := Engine{MinViableDivisor: dec("-0.5")}
	res, err := eng.Compute(Input{Regime: RegimeSimples, Channel: ch})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != StatusInfeasible {
		t.Fatalf("status = %s, want infeasible", res.Status)
	}
	equalDecimal(t, "price", res.Outcome.SuggestedPrice.Decimal, "0")
}

func TestSolve_NinetySixPercentDeductions(t *testing.T) {
	rates := Rates{ICMSOut: dec("18"), Commission: dec("38"), ProfitMargin: dec("40")}

	sol := Solve(dec("82.75"), rates, DefaultMinViableDivisor)
	equalDecimal(t, "divisor", sol.Divisor, "0.04")
	if sol.Status != StatusInfeasible {
		t.Fatalf("status = %s, want infeasible", sol.Status)
	}
	equalDecimal(t, "price", sol.Price, "0")
}

func TestSolve_MarginMonotonicity(t *testing.T) {
	prev := decimal.NewFromInt(-1)
	for margin := int64(0); margin <= 70; margin += 5 {
		rates := scenarioRates()
		rates.ProfitMargin = decimal.NewFromInt(margin)

		sol := Solve(dec("82.75"), rates, DefaultMinViableDivisor)
		if sol.Status != StatusOK {
			t.Fatalf("margin %d unexpectedly infeasible", margin)
		}
		if !sol.Price.GreaterThan(prev) {
			t.Fatalf("margin %d: price %s not greater than %s", margin, sol.Price, prev)
		}
		prev = sol.Price
	}
}

func TestSolve_ZeroCostProductIsFree(t *testing.T) {
	rates := scenarioRates()
	rates.FreightValue = decimal.Zero

	sol := Solve(decimal.Zero, rates, DefaultMinViableDivisor)
	if sol.Status != StatusOK {
		t.Fatalf("status = %s, want ok", sol.Status)
	}
	equalDecimal(t, "price", sol.Price, "0")
}

func channelForScenario() SalesChannel {
	return SalesChannel{
		ID:                  7,
		Name:                "Marketplace",
		ICMSOut:             nd("12"),
		Commission:          nd("3"),
		Marketing:           nd("2"),
		FixedCostAllocation: nd("5"),
		ProfitMargin:        nd("15"),
		FreightValue:        nd("5"),
	}
}

func TestCompute_RealProfitScenario(t *testing.T) {
	steel := nationalMaterial()
	in := Input{
		Regime:  RegimeRealProfit,
		Product: Product{ID: 1, Lines: []BOMLine{{MaterialID: 1, Material: &steel, Quantity: dec("1")}}},
		Channel: channelForScenario(),
	}

	res, err := Compute(in)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if res.Status != StatusOK || res.Regime != RegimeRealProfit || res.ChannelName != "Marketplace" {
		t.Fatalf("unexpected header: %+v", res)
	}
	equalDecimal(t, "divisor", res.AppliedDivisor.Decimal, "0.63")
	equalDecimal(t, "industrial", res.Costs.IndustrialTotal.Decimal, "82.75")
	equalDecimal(t, "freight", res.Costs.Freight.Decimal, "5")
	equalDecimal(t, "price", res.Outcome.SuggestedPrice.Decimal, "139.29")
	equalDecimal(t, "profit", res.Outcome.NetProfitAbsolute.Decimal, "20.89")

	// price x divisor recovers cost + freight
	back := res.Outcome.SuggestedPrice.Mul(res.AppliedDivisor.Decimal)
	want := res.Costs.IndustrialTotal.Add(res.Costs.Freight.Decimal)
	if back.Sub(want).Abs().GreaterThan(dec("0.01")) {
		t.Fatalf("price*divisor = %s, want %s within 0.01", back, want)
	}
}

func TestCompute_InfeasibleIsAResultNotAnError(t *testing.T) {
	ch := channelForScenario()
	ch.ProfitMargin = nd("74")

	res, err := Compute(Input{Regime: RegimeSimples, Channel: ch})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != StatusInfeasible {
		t.Fatalf("status = %s, want infeasible", res.Status)
	}
	equalDecimal(t, "price", res.Outcome.SuggestedPrice.Decimal, "0")
	equalDecimal(t, "profit", res.Outcome.NetProfitAbsolute.Decimal, "0")
	equalDecimal(t, "divisor", res.AppliedDivisor.Decimal, "0.04")
}

func TestCompute_InvalidRegime(t *testing.T) {
	_, err := Compute(Input{Regime: Regime("LUCRO_ARBITRADO"), Channel: channelForScenario()})
	if !errors.Is(err, ErrInvalidRegime) {
		t.Fatalf("err = %v, want ErrInvalidRegime", err)
	}
}

func TestCompute_MissingMaterialPropagates(t *testing.T) {
	in := Input{
		Regime:  RegimeSimples,
		Product: Product{ID: 3, Lines: []BOMLine{{MaterialID: 9, Quantity: dec("1")}}},
		Channel: channelForScenario(),
	}

	if _, err := Compute(in); !errors.Is(err, ErrMaterialNotFound) {
		t.Fatalf("err = %v, want ErrMaterialNotFound", err)
	}
}

func TestEngine_CustomThreshold(t *testing.T) {
	ch := channelForScenario()
	ch.ProfitMargin = nd("70") // divisor 0.08

	res, err := Compute(Input{Regime: RegimeSimples, Channel: ch})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != StatusOK {
		t.Fatalf("default threshold: status = %s, want ok", res.Status)
	}

	strict, err := NewEngine(dec("0.10"))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res, err = strict.Compute(Input{Regime: RegimeSimples, Channel: ch})
	if err != nil {
		t.Fatalf("Compute strict: %v", err)
	}
	if res.Status != StatusInfeasible {
		t.Fatalf("strict threshold: status = %s, want infeasible", res.Status)
	}
}

func TestCompute_IsDeterministic(t *testing.T) {
	steel := nationalMaterial()
	in := Input{
		Regime:  RegimePresumedProfit,
		Product: Product{Lines: []BOMLine{{MaterialID: 1, Material: &steel, Quantity: dec("3")}}},
		Channel: channelForScenario(),
	}

	first, err := Compute(in)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Compute(in)
		if err != nil {
			t.Fatalf("Compute (iteration=%d): %v", i, err)
		}
		if !again.Outcome.SuggestedPrice.Equal(first.Outcome.SuggestedPrice.Decimal) {
			t.Fatalf("iteration %d: price %s, want %s", i, again.Outcome.SuggestedPrice, first.Outcome.SuggestedPrice)
		}
	}
}

func TestResult_JSONFieldNames(t *testing.T) {
	res, err := Compute(Input{Regime: RegimeSimples, Channel: channelForScenario()})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, key := range []string{`"status":"ok"`, `"regime":"SIMPLES"`, `"channelName":"Marketplace"`, `"appliedDivisor"`, `"fixedCostAllocation"`, `"industrialTotal"`, `"result":{"suggestedPrice"`, `"netProfitAbsolute"`} {
		if !strings.Contains(body, key) {
			t.Fatalf("expected JSON to contain %s, got %s", key, body)
		}
	}
}

func TestResult_JSONFixedPrecision(t *testing.T) {
	ch := channelForScenario()
	ch.ProfitMargin = nd("74")

	res, err := Compute(Input{Regime: RegimeSimples, Channel: ch})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, key := range []string{
		`"status":"infeasible"`,
		`"appliedDivisor":"0.0400"`,
		`"industrialTotal":"0.00"`,
		`"freight":"5.00"`,
		`"suggestedPrice":"0.00"`,
		`"netProfitAbsolute":"0.00"`,
		`"icmsOut":12`,
		`"pisOut":0`,
		`"profitMargin":74`,
		`"freightValue":5`,
	} {
		if !strings.Contains(body, key) {
			t.Fatalf("expected JSON to contain %s, got %s", key, body)
		}
	}
}
