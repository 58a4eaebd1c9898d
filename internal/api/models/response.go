package models

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Result    ResultBody    `json:"result"`
	Breakdown BreakdownBody `json:"breakdown"`
	Analysis  AnalysisBody  `json:"analysis"`
	Headline  string        `json:"headline"`
}

// ResultBody contains the six headline figures, unrounded
type ResultBody struct {
	CostCaptiveWithSolar float64 `json:"cost_captive_with_solar"`
	CostFreeWithSolar    float64 `json:"cost_free_with_solar"`
	CostCaptiveNoSolar   float64 `json:"cost_captive_no_solar"`
	CostFreeNoSolar      float64 `json:"cost_free_no_solar"`
	SavingsWithSolar     float64 `json:"savings_with_solar"`
	SavingsNoSolar       float64 `json:"savings_no_solar"`
}

// BreakdownBody contains the intermediate values of the calculation
type BreakdownBody struct {
	PeakConsumptionKWh    float64 `json:"peak_consumption_kwh"`
	OffPeakConsumptionKWh float64 `json:"off_peak_consumption_kwh"`
	TotalConsumptionKWh   float64 `json:"total_consumption_kwh"`
	CaptivePeakTariff     float64 `json:"captive_peak_tariff"`
	CaptiveOffPeakTariff  float64 `json:"captive_off_peak_tariff"`
	FreeMarketTariff      float64 `json:"free_market_tariff"`
	AverageCaptiveTariff  float64 `json:"average_captive_tariff"`
	GrossCaptiveCost      float64 `json:"gross_captive_cost"`
	TaxFraction           float64 `json:"tax_fraction"`
	EffectiveSolarKWh     float64 `json:"effective_solar_kwh"`
	CappedSolarKWh        float64 `json:"capped_solar_kwh"`
	CaptiveOffsetFraction float64 `json:"captive_offset_fraction"`
	FreeOffsetFraction    float64 `json:"free_offset_fraction"`
	SolarDiscountCaptive  float64 `json:"solar_discount_captive"`
	SolarDiscountFree     float64 `json:"solar_discount_free"`
}

// AnalysisBody contains derived figures. A nil field has no defined value
// for this input (e.g. no break-even tariff exists).
type AnalysisBody struct {
	BreakEvenFreeTariff     *float64 `json:"break_even_free_tariff"`
	SavingsPercentWithSolar *float64 `json:"savings_percent_with_solar"`
	SavingsPercentNoSolar   *float64 `json:"savings_percent_no_solar"`
}

// BatchResponse represents the response from a batch comparison
type BatchResponse struct {
	Results  []RankedResult     `json:"results"`
	Rejected []RejectedScenario `json:"rejected,omitempty"`
}

// RankedResult contains one accepted scenario, best savings first
type RankedResult struct {
	Rank     int          `json:"rank"`
	Name     string       `json:"name"`
	Result   ResultBody   `json:"result"`
	Analysis AnalysisBody `json:"analysis"`
}

// RejectedScenario names a scenario that could not be compared
type RejectedScenario struct {
	Name   string       `json:"name"`
	Error  string       `json:"error"`
	Fields []FieldIssue `json:"fields,omitempty"`
}

// FieldIssue is one invalid or missing input field
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// FieldInfo describes one input field
type FieldInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "bool"
	Unit        string      `json:"unit,omitempty"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
