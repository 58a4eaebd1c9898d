package model

import (
	"math"
)

// TariffInput holds one month of consumption and the prices of both market regimes.
// Units:
// - consumption and solar generation: kWh
// - tariffs: currency per kWh (the currency is implicit and shared by all tariffs)
// - TaxRatePercent: percent applied to the captive-market cost (18 means 18%)
// - offsets: percent of solar generation credited against each regime (nominally 0..100, not clamped)
type TariffInput struct {
	PeakConsumptionKWh    float64 `json:"peak_consumption_kwh"`
	OffPeakConsumptionKWh float64 `json:"off_peak_consumption_kwh"`

	CaptivePeakTariff    float64 `json:"captive_peak_tariff"`
	CaptiveOffPeakTariff float64 `json:"captive_off_peak_tariff"`
	TaxRatePercent       float64 `json:"tax_rate_percent"`

	FreeMarketTariff float64 `json:"free_market_tariff"`

	IncludeSolar bool `json:"include_solar"`
	// SolarGenerationKWh is ignored when IncludeSolar is false.
	SolarGenerationKWh float64 `json:"solar_generation_kwh"`

	CaptiveOffsetPercent float64 `json:"captive_offset_percent"`
	FreeOffsetPercent    float64 `json:"free_offset_percent"`
}

// Canonical field names, shared by validation errors, the HTTP API and scenario files.
const (
	FieldPeakConsumption      = "peak_consumption_kwh"
	FieldOffPeakConsumption   = "off_peak_consumption_kwh"
	FieldCaptivePeakTariff    = "captive_peak_tariff"
	FieldCaptiveOffPeakTariff = "captive_off_peak_tariff"
	FieldTaxRatePercent       = "tax_rate_percent"
	FieldFreeMarketTariff     = "free_market_tariff"
	FieldIncludeSolar         = "include_solar"
	FieldSolarGeneration      = "solar_generation_kwh"
	FieldCaptiveOffsetPercent = "captive_offset_percent"
	FieldFreeOffsetPercent    = "free_offset_percent"
)

// Validate rejects non-finite values. Negative values are accepted and propagate
// arithmetically; screening them is left to the caller.
func (in TariffInput) Validate() error {
	verr := &ValidationError{}
	check := func(field string, v float64) {
		switch {
		case math.IsNaN(v):
			verr.Add(field, "must be a number")
		case math.IsInf(v, 0):
			verr.Add(field, "must be finite")
		}
	}

	check(FieldPeakConsumption, in.PeakConsumptionKWh)
	check(FieldOffPeakConsumption, in.OffPeakConsumptionKWh)
	check(FieldCaptivePeakTariff, in.CaptivePeakTariff)
	check(FieldCaptiveOffPeakTariff, in.CaptiveOffPeakTariff)
	check(FieldTaxRatePercent, in.TaxRatePercent)
	check(FieldFreeMarketTariff, in.FreeMarketTariff)
	if in.IncludeSolar {
		check(FieldSolarGeneration, in.SolarGenerationKWh)
	}
	// Offsets are multiplied into the result even with zero solar, so a NaN here
	// would still poison both with-solar costs.
	check(FieldCaptiveOffsetPercent, in.CaptiveOffsetPercent)
	check(FieldFreeOffsetPercent, in.FreeOffsetPercent)

	return verr.OrNil()
}

// EffectiveSolarKWh is the generation taken into account: zero unless solar is included.
func (in TariffInput) EffectiveSolarKWh() float64 {
	if !in.IncludeSolar {
		return 0
	}
	return in.SolarGenerationKWh
}

// TotalConsumptionKWh is peak plus off-peak consumption.
func (in TariffInput) TotalConsumptionKWh() float64 {
	return in.PeakConsumptionKWh + in.OffPeakConsumptionKWh
}

// TariffResult is the monthly cost of both regimes, with and without the solar offset.
// Savings are captive minus free: positive means the free market is cheaper.
type TariffResult struct {
	CostCaptiveWithSolar float64 `json:"cost_captive_with_solar"`
	CostFreeWithSolar    float64 `json:"cost_free_with_solar"`
	CostCaptiveNoSolar   float64 `json:"cost_captive_no_solar"`
	CostFreeNoSolar      float64 `json:"cost_free_no_solar"`

	SavingsWithSolar float64 `json:"savings_with_solar"`
	SavingsNoSolar   float64 `json:"savings_no_solar"`

	Breakdown Breakdown `json:"breakdown"`
}

// Breakdown keeps every intermediate quantity of a comparison for display and audit.
// Nothing downstream reads it back into a calculation.
type Breakdown struct {
	PeakConsumptionKWh    float64 `json:"peak_consumption_kwh"`
	OffPeakConsumptionKWh float64 `json:"off_peak_consumption_kwh"`
	TotalConsumptionKWh   float64 `json:"total_consumption_kwh"`

	CaptivePeakTariff    float64 `json:"captive_peak_tariff"`
	CaptiveOffPeakTariff float64 `json:"captive_off_peak_tariff"`
	FreeMarketTariff     float64 `json:"free_market_tariff"`
	AverageCaptiveTariff float64 `json:"average_captive_tariff"`

	GrossCaptiveCost float64 `json:"gross_captive_cost"`
	TaxFraction      float64 `json:"tax_fraction"`

	EffectiveSolarKWh float64 `json:"effective_solar_kwh"`
	CappedSolarKWh    float64 `json:"capped_solar_kwh"`

	CaptiveOffsetFraction float64 `json:"captive_offset_fraction"`
	FreeOffsetFraction    float64 `json:"free_offset_fraction"`

	SolarDiscountCaptive float64 `json:"solar_discount_captive"`
	SolarDiscountFree    float64 `json:"solar_discount_free"`
}
