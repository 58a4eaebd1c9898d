package report

import (
	"fmt"
	"strings"
	"time"

	"tariff-compare/internal/analysis"
	"tariff-compare/internal/model"

	"github.com/google/uuid"
)

// DefaultFilename is the name offered when a report is downloaded.
const DefaultFilename = "energy-comparison"

type Options struct {
	Title    string
	Company  string
	State    string // Free-form region label, e.g. a state code; printed only
	Currency string
	// Now is the generation time; zero means time.Now().
	Now time.Time
}

// Report is everything a rendered document shows. It is built once and
// rendered by WritePDF or WriteXLSX without further calculation.
type Report struct {
	ID          uuid.UUID
	Title       string
	Company     string
	State       string
	Currency    string
	GeneratedAt time.Time

	Input     model.TariffInput
	Result    model.TariffResult
	Potential analysis.SavingsPotential
}

func New(in model.TariffInput, res *model.TariffResult, opts Options) Report {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Energy Comparison Report"
	}
	return Report{
		ID:          uuid.New(),
		Title:       title,
		Company:     strings.TrimSpace(opts.Company),
		State:       strings.ToUpper(strings.TrimSpace(opts.State)),
		Currency:    opts.Currency,
		GeneratedAt: now,
		Input:       in,
		Result:      *res,
		Potential:   analysis.ComputePotential(in, res),
	}
}

// Filename is the download name for the given extension ("pdf", "xlsx").
func (r Report) Filename(ext string) string {
	return DefaultFilename + "." + ext
}

// Headline is the one-sentence verdict printed above the figures.
func Headline(currency string, res *model.TariffResult) string {
	if res.SavingsWithSolar > 0 {
		return fmt.Sprintf("You would save approximately %s per month by migrating to the free market.",
			FormatMoney(currency, res.SavingsWithSolar))
	}
	return "The captive market is currently more advantageous in this scenario."
}

func (r Report) Headline() string {
	return Headline(r.Currency, &r.Result)
}

// SummaryRow is one line of the with/without solar comparison table.
type SummaryRow struct {
	Label     string
	WithSolar string
	NoSolar   string
}

func (r Report) SummaryRows() []SummaryRow {
	res := r.Result
	money := func(v float64) string { return FormatMoney(r.Currency, v) }

	pctWith, pctNo := "n/a", "n/a"
	if r.Potential.HasSavingsPercent {
		pctWith = FormatPercent(r.Potential.SavingsPercentWithSolar)
		pctNo = FormatPercent(r.Potential.SavingsPercentNoSolar)
	}

	return []SummaryRow{
		{Label: "Captive market cost", WithSolar: money(res.CostCaptiveWithSolar), NoSolar: money(res.CostCaptiveNoSolar)},
		{Label: "Free market cost", WithSolar: money(res.CostFreeWithSolar), NoSolar: money(res.CostFreeNoSolar)},
		{Label: "Estimated savings", WithSolar: money(res.SavingsWithSolar), NoSolar: money(res.SavingsNoSolar)},
		{Label: "Savings percentage", WithSolar: pctWith, NoSolar: pctNo},
	}
}

// Line is a label/value pair of the calculation breakdown.
type Line struct {
	Label string
	Value string
}

func (r Report) BreakdownLines() []Line {
	b := r.Result.Breakdown
	money := func(v float64) string { return FormatMoney(r.Currency, v) }
	tariff := func(v float64) string { return FormatTariff(r.Currency, v) }

	lines := []Line{
		{"Peak consumption", FormatEnergy(b.PeakConsumptionKWh)},
		{"Off-peak consumption", FormatEnergy(b.OffPeakConsumptionKWh)},
		{"Total consumption", FormatEnergy(b.TotalConsumptionKWh)},
		{"Captive peak tariff", tariff(b.CaptivePeakTariff)},
		{"Captive off-peak tariff", tariff(b.CaptiveOffPeakTariff)},
		{"Average captive tariff", tariff(b.AverageCaptiveTariff)},
		{"Free market tariff", tariff(b.FreeMarketTariff)},
		{"Gross captive cost (before tax)", money(b.GrossCaptiveCost)},
		{"Tax rate", FormatPercent(b.TaxFraction * 100)},
	}
	if r.Input.IncludeSolar {
		lines = append(lines,
			Line{"Solar generation", FormatEnergy(b.EffectiveSolarKWh)},
			Line{"Solar generation credited", FormatEnergy(b.CappedSolarKWh)},
			Line{"Captive compensation", FormatPercent(b.CaptiveOffsetFraction * 100)},
			Line{"Free market compensation", FormatPercent(b.FreeOffsetFraction * 100)},
			Line{"Solar discount (captive)", money(b.SolarDiscountCaptive)},
			Line{"Solar discount (free)", money(b.SolarDiscountFree)},
		)
	}
	if r.Potential.HasBreakEven {
		lines = append(lines, Line{"Break-even free market tariff", tariff(r.Potential.BreakEvenFreeTariff)})
	}
	return lines
}
