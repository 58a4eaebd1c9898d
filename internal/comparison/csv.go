package comparison

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

var csvHeader = []string{
	"scenario",
	"peak_consumption_kwh",
	"off_peak_consumption_kwh",
	"captive_peak_tariff",
	"captive_off_peak_tariff",
	"tax_rate_percent",
	"free_market_tariff",
	"include_solar",
	"solar_generation_kwh",
	"captive_offset_percent",
	"free_offset_percent",
	"cost_captive_with_solar",
	"cost_free_with_solar",
	"cost_captive_no_solar",
	"cost_free_no_solar",
	"savings_with_solar",
	"savings_no_solar",
	"error",
}

func WriteResultsCSV(path string, results []NamedResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return EncodeResultsCSV(f, results)
}

// EncodeResultsCSV writes one row per scenario. Rejected scenarios keep their
// inputs and carry the error text with empty outputs.
func EncodeResultsCSV(out io.Writer, results []NamedResult) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range results {
		in := r.Input
		row := []string{
			r.Name,
			fmtFloat(in.PeakConsumptionKWh),
			fmtFloat(in.OffPeakConsumptionKWh),
			fmtFloat(in.CaptivePeakTariff),
			fmtFloat(in.CaptiveOffPeakTariff),
			fmtFloat(in.TaxRatePercent),
			fmtFloat(in.FreeMarketTariff),
			strconv.FormatBool(in.IncludeSolar),
			fmtFloat(in.SolarGenerationKWh),
			fmtFloat(in.CaptiveOffsetPercent),
			fmtFloat(in.FreeOffsetPercent),
		}
		if r.Result != nil {
			res := r.Result
			row = append(row,
				fmtFloat(res.CostCaptiveWithSolar),
				fmtFloat(res.CostFreeWithSolar),
				fmtFloat(res.CostCaptiveNoSolar),
				fmtFloat(res.CostFreeNoSolar),
				fmtFloat(res.SavingsWithSolar),
				fmtFloat(res.SavingsNoSolar),
				"",
			)
		} else {
			msg := ""
			if r.Err != nil {
				msg = r.Err.Error()
			}
			row = append(row, "", "", "", "", "", "", msg)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
