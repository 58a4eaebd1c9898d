package comparison

import (
	"math"

	"tariff-compare/internal/model"
)

// Engine compares the captive and free market costs of one month of consumption.
// It holds no state; a single Engine may be shared between goroutines.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Compare validates the input and computes both regimes with and without solar offset.
// Values are not rounded.
func (e *Engine) Compare(in model.TariffInput) (*model.TariffResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	total := in.TotalConsumptionKWh()
	grossCaptive := in.PeakConsumptionKWh*in.CaptivePeakTariff + in.OffPeakConsumptionKWh*in.CaptiveOffPeakTariff
	avgCaptive := (in.CaptivePeakTariff + in.CaptiveOffPeakTariff) / 2
	tax := in.TaxRatePercent / 100

	// Generation beyond consumption is not credited in either regime.
	solar := in.EffectiveSolarKWh()
	capped := math.Min(solar, total)

	captiveOffset := in.CaptiveOffsetPercent / 100
	freeOffset := in.FreeOffsetPercent / 100

	// The captive credit is valued at the average tariff, never split by period.
	discountCaptive := capped * avgCaptive * captiveOffset
	discountFree := capped * in.FreeMarketTariff * freeOffset

	res := &model.TariffResult{
		// Tax applies to the captive cost after the solar discount.
		CostCaptiveWithSolar: (grossCaptive - discountCaptive) * (1 + tax),
		CostFreeWithSolar:    total*in.FreeMarketTariff - discountFree,
		CostCaptiveNoSolar:   grossCaptive * (1 + tax),
		CostFreeNoSolar:      total * in.FreeMarketTariff,
		Breakdown: model.Breakdown{
			PeakConsumptionKWh:    in.PeakConsumptionKWh,
			OffPeakConsumptionKWh: in.OffPeakConsumptionKWh,
			TotalConsumptionKWh:   total,

			CaptivePeakTariff:    in.CaptivePeakTariff,
			CaptiveOffPeakTariff: in.CaptiveOffPeakTariff,
			FreeMarketTariff:     in.FreeMarketTariff,
			AverageCaptiveTariff: avgCaptive,

			GrossCaptiveCost: grossCaptive,
			TaxFraction:      tax,

			EffectiveSolarKWh: solar,
			CappedSolarKWh:    capped,

			CaptiveOffsetFraction: captiveOffset,
			FreeOffsetFraction:    freeOffset,

			SolarDiscountCaptive: discountCaptive,
			SolarDiscountFree:    discountFree,
		},
	}
	res.SavingsWithSolar = res.CostCaptiveWithSolar - res.CostFreeWithSolar
	res.SavingsNoSolar = res.CostCaptiveNoSolar - res.CostFreeNoSolar
	if err := checkFinite(res); err != nil {
		return nil, err
	}
	return res, nil
}

// ReasonOverflow marks a derived value that left the float64 range although
// every input was finite.
const ReasonOverflow = "overflows: inputs are too large"

// checkFinite rejects a result with any NaN or Inf value, naming each one.
func checkFinite(res *model.TariffResult) error {
	b := res.Breakdown
	verr := &model.ValidationError{}
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"total_consumption_kwh", b.TotalConsumptionKWh},
		{"average_captive_tariff", b.AverageCaptiveTariff},
		{"gross_captive_cost", b.GrossCaptiveCost},
		{"tax_fraction", b.TaxFraction},
		{"capped_solar_kwh", b.CappedSolarKWh},
		{"solar_discount_captive", b.SolarDiscountCaptive},
		{"solar_discount_free", b.SolarDiscountFree},
		{"cost_captive_with_solar", res.CostCaptiveWithSolar},
		{"cost_free_with_solar", res.CostFreeWithSolar},
		{"cost_captive_no_solar", res.CostCaptiveNoSolar},
		{"cost_free_no_solar", res.CostFreeNoSolar},
		{"savings_with_solar", res.SavingsWithSolar},
		{"savings_no_solar", res.SavingsNoSolar},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			verr.Add(v.name, ReasonOverflow)
		}
	}
	return verr.OrNil()
}

// Compare runs a one-off comparison with a fresh Engine.
func Compare(in model.TariffInput) (*model.TariffResult, error) {
	return New().Compare(in)
}

// Scenario is a named input of a batch. Err marks a scenario rejected before it
// reached the engine, e.g. a required field missing from a scenario file.
type Scenario struct {
	Name  string
	Input model.TariffInput
	Err   error
}

// NamedResult is a comparison tagged with the scenario it came from.
// Err is set instead of Result when the scenario was rejected.
type NamedResult struct {
	Name   string
	Input  model.TariffInput
	Result *model.TariffResult
	Err    error
}

// CompareAll runs every scenario in order. A rejected scenario keeps its slot with Err set.
func (e *Engine) CompareAll(scenarios []Scenario) []NamedResult {
	out := make([]NamedResult, 0, len(scenarios))
	for _, sc := range scenarios {
		r := NamedResult{Name: sc.Name, Input: sc.Input, Err: sc.Err}
		if r.Err == nil {
			r.Result, r.Err = e.Compare(sc.Input)
		}
		out = append(out, r)
	}
	return out
}
