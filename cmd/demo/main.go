package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"tariff-compare/internal/analysis"
	"tariff-compare/internal/comparison"
	"tariff-compare/internal/config"
	"tariff-compare/internal/model"
	"tariff-compare/internal/report"
)

// Demo:
// - Build a few reference inputs (or load them from --scenarios)
// - Run them through the comparison engine
// - Print every intermediate value to show how the formula fits together
func main() {
	scenariosPath := flag.String("scenarios", "", "Optional scenario YAML/JSON to run instead of the built-in examples")
	currency := flag.String("currency", "R$", "Currency label for amounts")
	outCSV := flag.String("out", "", "Optional path to write results CSV (e.g. results/demo.csv)")
	flag.Parse()

	scenarios := referenceScenarios()
	if *scenariosPath != "" {
		f, err := config.LoadScenarios(*scenariosPath)
		if err != nil {
			panic(err)
		}
		scenarios = f.Build(config.DefaultApp().Defaults)
	}

	results := comparison.New().CompareAll(scenarios)
	for _, r := range results {
		fmt.Printf("== %s\n", r.Name)
		if r.Err != nil {
			fmt.Printf("  rejected: %v\n\n", r.Err)
			continue
		}
		b := r.Result.Breakdown
		cur := *currency
		fmt.Printf("  consumption        %s peak + %s off-peak = %s\n",
			report.FormatEnergy(b.PeakConsumptionKWh), report.FormatEnergy(b.OffPeakConsumptionKWh), report.FormatEnergy(b.TotalConsumptionKWh))
		fmt.Printf("  gross captive      %s (before %s tax)\n",
			report.FormatMoney(cur, b.GrossCaptiveCost), report.FormatPercent(b.TaxFraction*100))
		if r.Input.IncludeSolar {
			fmt.Printf("  solar              %s generated, %s credited\n",
				report.FormatEnergy(b.EffectiveSolarKWh), report.FormatEnergy(b.CappedSolarKWh))
			fmt.Printf("  captive credit     %s x %s x %s = %s\n",
				report.FormatEnergy(b.CappedSolarKWh), report.FormatTariff(cur, b.AverageCaptiveTariff),
				report.FormatPercent(b.CaptiveOffsetFraction*100), report.FormatMoney(cur, b.SolarDiscountCaptive))
			fmt.Printf("  free credit        %s x %s x %s = %s\n",
				report.FormatEnergy(b.CappedSolarKWh), report.FormatTariff(cur, b.FreeMarketTariff),
				report.FormatPercent(b.FreeOffsetFraction*100), report.FormatMoney(cur, b.SolarDiscountFree))
		}
		fmt.Printf("  captive / free     %s / %s (no solar: %s / %s)\n",
			report.FormatMoney(cur, r.Result.CostCaptiveWithSolar), report.FormatMoney(cur, r.Result.CostFreeWithSolar),
			report.FormatMoney(cur, r.Result.CostCaptiveNoSolar), report.FormatMoney(cur, r.Result.CostFreeNoSolar))
		if tariff, ok := analysis.BreakEvenFreeTariff(r.Input, r.Result); ok {
			fmt.Printf("  break-even         free tariff %s\n", report.FormatTariff(cur, tariff))
		}
		fmt.Printf("  %s\n\n", report.Headline(cur, r.Result))
	}

	if *outCSV != "" {
		if err := os.MkdirAll(filepath.Dir(*outCSV), 0o755); err != nil {
			panic(err)
		}
		if err := comparison.WriteResultsCSV(*outCSV, results); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(results), *outCSV)
	}
}

func referenceScenarios() []comparison.Scenario {
	base := model.TariffInput{
		PeakConsumptionKWh:    100,
		OffPeakConsumptionKWh: 200,
		CaptivePeakTariff:     0.9,
		CaptiveOffPeakTariff:  0.6,
		TaxRatePercent:        20,
		FreeMarketTariff:      0.5,
		CaptiveOffsetPercent:  100,
		FreeOffsetPercent:     100,
	}

	withSolar := base
	withSolar.IncludeSolar = true
	withSolar.SolarGenerationKWh = 150
	withSolar.CaptiveOffsetPercent = 80

	overGeneration := withSolar
	overGeneration.SolarGenerationKWh = 1000

	expensiveFree := base
	expensiveFree.FreeMarketTariff = 0.95

	return []comparison.Scenario{
		{Name: "no solar", Input: base},
		{Name: "solar 150 kWh", Input: withSolar},
		{Name: "solar 1000 kWh (capped)", Input: overGeneration},
		{Name: "expensive free market", Input: expensiveFree},
	}
}
