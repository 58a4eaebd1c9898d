package analysis

import (
	"errors"
	"fmt"
	"math"

	"tariff-compare/internal/comparison"
	"tariff-compare/internal/model"
)

// SavingsPotential summarises how far a scenario is from the break-even point.
type SavingsPotential struct {
	// BreakEvenFreeTariff is the free-market tariff at which SavingsWithSolar is zero.
	// Only meaningful when HasBreakEven is true.
	BreakEvenFreeTariff float64 `json:"break_even_free_tariff"`
	HasBreakEven        bool    `json:"has_break_even"`

	// Savings relative to the captive cost without solar, in percent.
	SavingsPercentWithSolar float64 `json:"savings_percent_with_solar"`
	SavingsPercentNoSolar   float64 `json:"savings_percent_no_solar"`
	HasSavingsPercent       bool    `json:"has_savings_percent"`
}

func ComputePotential(in model.TariffInput, res *model.TariffResult) SavingsPotential {
	p := SavingsPotential{}
	if res == nil {
		return p
	}
	p.BreakEvenFreeTariff, p.HasBreakEven = BreakEvenFreeTariff(in, res)

	if pct, ok := SavingsPercent(res.SavingsWithSolar, res.CostCaptiveNoSolar); ok {
		p.SavingsPercentWithSolar = pct
		p.SavingsPercentNoSolar, _ = SavingsPercent(res.SavingsNoSolar, res.CostCaptiveNoSolar)
		p.HasSavingsPercent = true
	}
	return p
}

// BreakEvenFreeTariff solves costFreeWithSolar(T) == costCaptiveWithSolar for T.
// The free cost is linear in T: T * (total - capped*freeOffset).
// It reports false when that slope is not positive, i.e. no tariff balances the two.
func BreakEvenFreeTariff(in model.TariffInput, res *model.TariffResult) (float64, bool) {
	b := res.Breakdown
	slope := b.TotalConsumptionKWh - b.CappedSolarKWh*b.FreeOffsetFraction
	if slope <= 0 {
		return 0, false
	}
	return res.CostCaptiveWithSolar / slope, true
}

// SavingsPercent is savings as a percentage of the captive cost without solar.
// Both the with-solar and no-solar savings use that same denominator.
func SavingsPercent(savings, captiveNoSolar float64) (float64, bool) {
	if captiveNoSolar == 0 {
		return 0, false
	}
	return savings / captiveNoSolar * 100, true
}

// SweepPoint is one tax rate of a sweep.
type SweepPoint struct {
	TaxRatePercent float64
	Result         *model.TariffResult
}

// MaxSweepPoints bounds the number of tax rates a single sweep evaluates.
const MaxSweepPoints = 10000

// TaxSweep recomputes the comparison for tax rates from..to (inclusive) in steps.
func TaxSweep(in model.TariffInput, from, to, step float64) ([]SweepPoint, error) {
	if math.IsNaN(from) || math.IsInf(from, 0) || math.IsNaN(to) || math.IsInf(to, 0) {
		return nil, fmt.Errorf("from (%v) and to (%v) must be finite", from, to)
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, errors.New("step must be a finite number > 0")
	}
	if from > to {
		return nil, fmt.Errorf("from (%v) must be <= to (%v)", from, to)
	}
	span := (to - from) / step
	if math.IsInf(span, 0) || span+1 > MaxSweepPoints {
		return nil, fmt.Errorf("sweep from %v to %v by %v exceeds %d points", from, to, step, MaxSweepPoints)
	}

	engine := comparison.New()
	n := int(span+1e-9) + 1
	out := make([]SweepPoint, 0, n)
	for i := 0; i < n; i++ {
		// Multiply instead of accumulating so the last point lands on `to`.
		tax := from + float64(i)*step
		cur := in
		cur.TaxRatePercent = tax
		res, err := engine.Compare(cur)
		if err != nil {
			return nil, fmt.Errorf("tax %v: %w", tax, err)
		}
		out = append(out, SweepPoint{TaxRatePercent: tax, Result: res})
	}
	return out, nil
}
