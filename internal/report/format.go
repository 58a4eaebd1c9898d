package report

import (
	"math"

	"github.com/shopspring/decimal"
)

// Amounts are computed at full precision and rounded here, for display only.

// NotAvailable stands in for a value that has no decimal form (NaN or Inf).
const NotAvailable = "n/a"

func FormatMoney(currency string, v float64) string {
	if !finite(v) {
		return prefix(currency) + NotAvailable
	}
	return prefix(currency) + decimal.NewFromFloat(v).StringFixed(2)
}

// FormatTariff keeps four decimals; per-kWh prices are often below one unit.
func FormatTariff(currency string, v float64) string {
	if !finite(v) {
		return prefix(currency) + NotAvailable + "/kWh"
	}
	return prefix(currency) + decimal.NewFromFloat(v).StringFixed(4) + "/kWh"
}

func FormatPercent(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

func FormatEnergy(kwh float64) string {
	if !finite(kwh) {
		return NotAvailable + " kWh"
	}
	return decimal.NewFromFloat(kwh).StringFixed(2) + " kWh"
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func prefix(currency string) string {
	if currency == "" {
		return ""
	}
	return currency + " "
}
