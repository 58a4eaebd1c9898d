package report

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary   = "Summary"
	sheetBreakdown = "Breakdown"
)

// WriteXLSX renders r as a workbook with a "Summary" sheet (the with/without
// solar table as numbers) and a "Breakdown" sheet (every intermediate value at
// full precision).
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetSummary); err != nil {
		return err
	}
	if err := writeSummarySheet(f, r); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetBreakdown); err != nil {
		return err
	}
	if err := writeBreakdownSheet(f, r); err != nil {
		return err
	}
	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, r Report) error {
	res := r.Result
	rows := [][]interface{}{
		{r.Title},
		{r.Headline()},
		{},
		{"", "With solar", "Without solar"},
		{"Captive market cost", res.CostCaptiveWithSolar, res.CostCaptiveNoSolar},
		{"Free market cost", res.CostFreeWithSolar, res.CostFreeNoSolar},
		{"Estimated savings", res.SavingsWithSolar, res.SavingsNoSolar},
	}
	if r.Potential.HasSavingsPercent {
		rows = append(rows, []interface{}{"Savings percentage", r.Potential.SavingsPercentWithSolar, r.Potential.SavingsPercentNoSolar})
	} else {
		rows = append(rows, []interface{}{"Savings percentage", "n/a", "n/a"})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Currency", r.Currency},
		[]interface{}{"State", r.State},
		[]interface{}{"Report ID", r.ID.String()},
		[]interface{}{"Generated at", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
	)
	if err := setRows(f, sheetSummary, rows); err != nil {
		return err
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "B5", "C8", moneyStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheetSummary, "A", "C", 24)
}

func writeBreakdownSheet(f *excelize.File, r Report) error {
	b := r.Result.Breakdown
	rows := [][]interface{}{
		{"Quantity", "Value", "Unit"},
		{"Peak consumption", b.PeakConsumptionKWh, "kWh"},
		{"Off-peak consumption", b.OffPeakConsumptionKWh, "kWh"},
		{"Total consumption", b.TotalConsumptionKWh, "kWh"},
		{"Captive peak tariff", b.CaptivePeakTariff, "per kWh"},
		{"Captive off-peak tariff", b.CaptiveOffPeakTariff, "per kWh"},
		{"Average captive tariff", b.AverageCaptiveTariff, "per kWh"},
		{"Free market tariff", b.FreeMarketTariff, "per kWh"},
		{"Gross captive cost", b.GrossCaptiveCost, r.Currency},
		{"Tax fraction", b.TaxFraction, ""},
		{"Solar generation", b.EffectiveSolarKWh, "kWh"},
		{"Solar generation credited", b.CappedSolarKWh, "kWh"},
		{"Captive offset fraction", b.CaptiveOffsetFraction, ""},
		{"Free offset fraction", b.FreeOffsetFraction, ""},
		{"Solar discount (captive)", b.SolarDiscountCaptive, r.Currency},
		{"Solar discount (free)", b.SolarDiscountFree, r.Currency},
	}
	if r.Potential.HasBreakEven {
		rows = append(rows, []interface{}{"Break-even free market tariff", r.Potential.BreakEvenFreeTariff, "per kWh"})
	}
	if err := setRows(f, sheetBreakdown, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetBreakdown, "A", "A", 32)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
