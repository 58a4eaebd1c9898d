package models

// TariffFields is the JSON shape of one tariff input. Every field is a pointer
// so a missing value can be told apart from zero; required fields are checked
// after binding and reported together.
type TariffFields struct {
	PeakConsumptionKWh    *float64 `json:"peak_consumption_kwh"`
	OffPeakConsumptionKWh *float64 `json:"off_peak_consumption_kwh"`
	CaptivePeakTariff     *float64 `json:"captive_peak_tariff"`
	CaptiveOffPeakTariff  *float64 `json:"captive_off_peak_tariff"`
	TaxRatePercent        *float64 `json:"tax_rate_percent"`
	FreeMarketTariff      *float64 `json:"free_market_tariff"`
	IncludeSolar          *bool    `json:"include_solar"`
	SolarGenerationKWh    *float64 `json:"solar_generation_kwh,omitempty"`   // required when include_solar
	CaptiveOffsetPercent  *float64 `json:"captive_offset_percent,omitempty"` // default from server config
	FreeOffsetPercent     *float64 `json:"free_offset_percent,omitempty"`    // default from server config
}

// CompareRequest represents the request body for POST /api/v1/compare
type CompareRequest struct {
	TariffFields
}

// ReportRequest represents the request body for POST /api/v1/report
type ReportRequest struct {
	TariffFields
	Title   string `json:"title,omitempty"`   // default: report.title from config
	Company string `json:"company,omitempty"` // default: report.company from config
	State   string `json:"state,omitempty"`   // e.g. "SP"
}

// BatchRequest represents a request to compare several scenarios built on one base
type BatchRequest struct {
	Base      TariffFields    `json:"base"`
	Scenarios []BatchScenario `json:"scenarios" binding:"required,min=1,dive"`
}

// BatchScenario overrides the base fields it sets
type BatchScenario struct {
	Name  string       `json:"name" binding:"required"`
	Input TariffFields `json:"input"`
}
