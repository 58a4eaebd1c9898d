package report

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin  = 15.0
	chartHeight = 60.0
	barWidth    = 40.0
)

type rgb struct{ r, g, b int }

var (
	colorCaptive = rgb{37, 99, 235}
	colorFree    = rgb{22, 163, 74}
	colorText    = rgb{17, 24, 39}
	colorMuted   = rgb{107, 114, 128}
	colorRule    = rgb{209, 213, 219}
)

// WritePDF renders r as a one-page A4 document: verdict, a two-bar chart of
// the with-solar costs, the headline figures, the with/without solar table and
// the calculation breakdown.
func WritePDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("tariff-compare", true)
	pdf.SetCreationDate(r.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	setColor(pdf, colorText)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(r.Title), "", 1, "L", false, 0, "")

	if sub := subtitle(r); sub != "" {
		setColor(pdf, colorMuted)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW, 6, tr(sub), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	setColor(pdf, colorText)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(contentW, 6, tr(r.Headline()), "", "L", false)
	pdf.Ln(4)

	drawCostChart(pdf, tr, r, pageMargin, pdf.GetY(), contentW)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Results", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range []Line{
		{"Captive market cost", FormatMoney(r.Currency, r.Result.CostCaptiveWithSolar)},
		{"Free market cost", FormatMoney(r.Currency, r.Result.CostFreeWithSolar)},
		{"Estimated savings (with solar)", FormatMoney(r.Currency, r.Result.SavingsWithSolar)},
		{"Estimated savings (without solar)", FormatMoney(r.Currency, r.Result.SavingsNoSolar)},
	} {
		keyValue(pdf, tr, l, contentW)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr("Comparison with and without solar"), "", 1, "L", false, 0, "")
	labelW := contentW * 0.4
	colW := (contentW - labelW) / 2
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
	pdf.CellFormat(labelW, 7, "", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colW, 7, "With solar", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colW, 7, "Without solar", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range r.SummaryRows() {
		pdf.CellFormat(labelW, 6, tr(row.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(colW, 6, tr(row.WithSolar), "", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 6, tr(row.NoSolar), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Calculation breakdown", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, l := range r.BreakdownLines() {
		keyValue(pdf, tr, l, contentW)
	}

	pdf.Ln(6)
	setColor(pdf, colorMuted)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5,
		"Report "+r.ID.String()+" generated "+r.GeneratedAt.Format("2006-01-02 15:04 MST"),
		"", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func subtitle(r Report) string {
	switch {
	case r.Company != "" && r.State != "":
		return r.Company + " - " + r.State
	case r.Company != "":
		return r.Company
	case r.State != "":
		return "State: " + r.State
	}
	return ""
}

func keyValue(pdf *fpdf.Fpdf, tr func(string) string, l Line, width float64) {
	pdf.CellFormat(width*0.6, 5.5, tr(l.Label), "", 0, "L", false, 0, "")
	pdf.CellFormat(width*0.4, 5.5, tr(l.Value), "", 1, "R", false, 0, "")
}

// drawCostChart draws the captive and free with-solar costs as two bars on a
// shared scale and moves the cursor below the chart.
func drawCostChart(pdf *fpdf.Fpdf, tr func(string) string, r Report, x, y, width float64) {
	captive, free := r.Result.CostCaptiveWithSolar, r.Result.CostFreeWithSolar
	hCaptive, hFree := barHeights(captive, free, chartHeight)

	valueH := 6.0
	base := y + valueH + chartHeight
	slot := width / 2
	bars := []struct {
		label  string
		value  float64
		height float64
		color  rgb
	}{
		{"Captive", captive, hCaptive, colorCaptive},
		{"Free", free, hFree, colorFree},
	}

	pdf.SetFont("Helvetica", "", 9)
	for i, b := range bars {
		bx := x + float64(i)*slot + (slot-barWidth)/2
		if b.height > 0 {
			pdf.SetFillColor(b.color.r, b.color.g, b.color.b)
			pdf.Rect(bx, base-b.height, barWidth, b.height, "F")
		}
		setColor(pdf, colorText)
		pdf.SetXY(bx, base-b.height-valueH)
		pdf.CellFormat(barWidth, valueH, tr(FormatMoney(r.Currency, b.value)), "", 0, "C", false, 0, "")
		pdf.SetXY(bx, base+1)
		pdf.CellFormat(barWidth, 5, b.label, "", 0, "C", false, 0, "")
	}

	pdf.SetDrawColor(colorRule.r, colorRule.g, colorRule.b)
	pdf.Line(x, base, x+width, base)
	pdf.SetXY(x, base+8)
}

// barHeights scales both values to the larger one. Non-positive values get no bar.
func barHeights(a, b, maxHeight float64) (float64, float64) {
	top := a
	if b > top {
		top = b
	}
	if top <= 0 {
		return 0, 0
	}
	scale := func(v float64) float64 {
		if v <= 0 {
			return 0
		}
		return v / top * maxHeight
	}
	return scale(a), scale(b)
}

func setColor(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.r, c.g, c.b)
}
