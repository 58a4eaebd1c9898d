package comparison

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff-compare/internal/model"
)

const eps = 1e-9

func scenarioA() model.TariffInput {
	return model.TariffInput{
		PeakConsumptionKWh:    100,
		OffPeakConsumptionKWh: 200,
		CaptivePeakTariff:     0.9,
		CaptiveOffPeakTariff:  0.6,
		TaxRatePercent:        20,
		FreeMarketTariff:      0.5,
		CaptiveOffsetPercent:  100,
		FreeOffsetPercent:     100,
	}
}

func scenarioB() model.TariffInput {
	in := scenarioA()
	in.IncludeSolar = true
	in.SolarGenerationKWh = 150
	in.CaptiveOffsetPercent = 80
	in.FreeOffsetPercent = 100
	return in
}

func assertSameResult(t *testing.T, want, got *model.TariffResult) {
	t.Helper()
	assert.InDelta(t, want.CostCaptiveWithSolar, got.CostCaptiveWithSolar, eps)
	assert.InDelta(t, want.CostFreeWithSolar, got.CostFreeWithSolar, eps)
	assert.InDelta(t, want.CostCaptiveNoSolar, got.CostCaptiveNoSolar, eps)
	assert.InDelta(t, want.CostFreeNoSolar, got.CostFreeNoSolar, eps)
	assert.InDelta(t, want.SavingsWithSolar, got.SavingsWithSolar, eps)
	assert.InDelta(t, want.SavingsNoSolar, got.SavingsNoSolar, eps)
}

func TestCompareScenarioWithoutSolar(t *testing.T) {
	res, err := Compare(scenarioA())
	require.NoError(t, err)

	assert.InDelta(t, 300, res.Breakdown.TotalConsumptionKWh, eps)
	assert.InDelta(t, 210, res.Breakdown.GrossCaptiveCost, eps)
	assert.InDelta(t, 252, res.CostCaptiveNoSolar, eps)
	assert.InDelta(t, 150, res.CostFreeNoSolar, eps)
	assert.InDelta(t, 102, res.SavingsNoSolar, eps)

	// Solar excluded: with-solar figures collapse onto the no-solar ones.
	assert.InDelta(t, 252, res.CostCaptiveWithSolar, eps)
	assert.InDelta(t, 150, res.CostFreeWithSolar, eps)
	assert.InDelta(t, 102, res.SavingsWithSolar, eps)
	assert.Zero(t, res.Breakdown.EffectiveSolarKWh)
	assert.Zero(t, res.Breakdown.SolarDiscountCaptive)
	assert.Zero(t, res.Breakdown.SolarDiscountFree)
}

func TestCompareScenarioWithSolar(t *testing.T) {
	res, err := Compare(scenarioB())
	require.NoError(t, err)

	b := res.Breakdown
	assert.InDelta(t, 300, b.TotalConsumptionKWh, eps)
	assert.InDelta(t, 150, b.CappedSolarKWh, eps)
	assert.InDelta(t, 0.75, b.AverageCaptiveTariff, eps)
	assert.InDelta(t, 0.2, b.TaxFraction, eps)
	assert.InDelta(t, 0.8, b.CaptiveOffsetFraction, eps)
	assert.InDelta(t, 1.0, b.FreeOffsetFraction, eps)
	assert.InDelta(t, 90, b.SolarDiscountCaptive, eps)
	assert.InDelta(t, 75, b.SolarDiscountFree, eps)

	assert.InDelta(t, 144, res.CostCaptiveWithSolar, eps)
	assert.InDelta(t, 75, res.CostFreeWithSolar, eps)
	assert.InDelta(t, 69, res.SavingsWithSolar, eps)

	// No-solar figures are always computed.
	assert.InDelta(t, 252, res.CostCaptiveNoSolar, eps)
	assert.InDelta(t, 150, res.CostFreeNoSolar, eps)
	assert.InDelta(t, 102, res.SavingsNoSolar, eps)
}

func TestCompareOverGenerationIsCapped(t *testing.T) {
	over := scenarioB()
	over.SolarGenerationKWh = 1000
	atCap := scenarioB()
	atCap.SolarGenerationKWh = 300

	got, err := Compare(over)
	require.NoError(t, err)
	want, err := Compare(atCap)
	require.NoError(t, err)

	assertSameResult(t, want, got)
	assert.InDelta(t, 1000, got.Breakdown.EffectiveSolarKWh, eps)
	assert.InDelta(t, 300, got.Breakdown.CappedSolarKWh, eps)
	// 300*0.75*0.8 = 180 -> (210-180)*1.2 = 36; 300*0.5 - 300*0.5 = 0
	assert.InDelta(t, 36, got.CostCaptiveWithSolar, eps)
	assert.InDelta(t, 0, got.CostFreeWithSolar, eps)
	assert.InDelta(t, 36, got.SavingsWithSolar, eps)
}

func TestCompareSolarCapProperty(t *testing.T) {
	base := scenarioB()
	total := base.TotalConsumptionKWh()
	base.SolarGenerationKWh = total
	want, err := Compare(base)
	require.NoError(t, err)

	for _, extra := range []float64{0.001, 1, 50, 1e6} {
		in := scenarioB()
		in.SolarGenerationKWh = total + extra
		got, err := Compare(in)
		require.NoError(t, err)
		assertSameResult(t, want, got)
	}
}

func TestCompareZeroConsumption(t *testing.T) {
	in := scenarioB()
	in.PeakConsumptionKWh = 0
	in.OffPeakConsumptionKWh = 0

	res, err := Compare(in)
	require.NoError(t, err)

	assert.Zero(t, res.CostCaptiveWithSolar)
	assert.Zero(t, res.CostFreeWithSolar)
	assert.Zero(t, res.CostCaptiveNoSolar)
	assert.Zero(t, res.CostFreeNoSolar)
	assert.Zero(t, res.SavingsWithSolar)
	assert.Zero(t, res.SavingsNoSolar)
	assert.Zero(t, res.Breakdown.CappedSolarKWh)
}

func TestCompareNoTaxNoSolarReduction(t *testing.T) {
	in := scenarioA()
	in.TaxRatePercent = 0
	in.IncludeSolar = false
	in.SolarGenerationKWh = 500

	res, err := Compare(in)
	require.NoError(t, err)

	assert.Equal(t, res.CostCaptiveNoSolar, res.CostCaptiveWithSolar)
	assert.Equal(t, res.CostFreeNoSolar, res.CostFreeWithSolar)
	assert.InDelta(t, 210, res.CostCaptiveNoSolar, eps)
}

func TestCompareTaxMonotonicity(t *testing.T) {
	prevWith, prevNo := math.Inf(-1), math.Inf(-1)
	for tax := 0.0; tax <= 40; tax += 2.5 {
		in := scenarioB()
		in.TaxRatePercent = tax
		res, err := Compare(in)
		require.NoError(t, err)

		assert.Greater(t, res.CostCaptiveWithSolar, prevWith, "tax %v", tax)
		assert.Greater(t, res.CostCaptiveNoSolar, prevNo, "tax %v", tax)
		prevWith, prevNo = res.CostCaptiveWithSolar, res.CostCaptiveNoSolar
	}
}

func TestCompareDiscountBeforeTax(t *testing.T) {
	res, err := Compare(scenarioB())
	require.NoError(t, err)

	b := res.Breakdown
	discountThenTax := (b.GrossCaptiveCost - b.SolarDiscountCaptive) * (1 + b.TaxFraction)
	taxThenDiscount := b.GrossCaptiveCost*(1+b.TaxFraction) - b.SolarDiscountCaptive
	assert.InDelta(t, discountThenTax, res.CostCaptiveWithSolar, eps)
	assert.NotEqual(t, taxThenDiscount, res.CostCaptiveWithSolar)
}

func TestCompareNegativeValuesPropagate(t *testing.T) {
	in := scenarioA()
	in.FreeMarketTariff = -0.5

	res, err := Compare(in)
	require.NoError(t, err)
	assert.InDelta(t, -150, res.CostFreeNoSolar, eps)
	assert.InDelta(t, 402, res.SavingsNoSolar, eps)
}

func TestCompareRejectsNonFiniteInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.TariffInput)
		fields []string
	}{
		{
			name:   "blank peak consumption",
			mutate: func(in *model.TariffInput) { in.PeakConsumptionKWh = math.NaN() },
			fields: []string{model.FieldPeakConsumption},
		},
		{
			name:   "infinite tariff",
			mutate: func(in *model.TariffInput) { in.FreeMarketTariff = math.Inf(1) },
			fields: []string{model.FieldFreeMarketTariff},
		},
		{
			name: "several fields at once",
			mutate: func(in *model.TariffInput) {
				in.CaptivePeakTariff = math.NaN()
				in.TaxRatePercent = math.Inf(-1)
				in.FreeOffsetPercent = math.NaN()
			},
			fields: []string{model.FieldCaptivePeakTariff, model.FieldTaxRatePercent, model.FieldFreeOffsetPercent},
		},
		{
			name: "solar generation when included",
			mutate: func(in *model.TariffInput) {
				in.IncludeSolar = true
				in.SolarGenerationKWh = math.NaN()
			},
			fields: []string{model.FieldSolarGeneration},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioA()
			tt.mutate(&in)

			res, err := Compare(in)
			require.Error(t, err)
			assert.Nil(t, res)

			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.fields, verr.Names())
		})
	}
}

func TestCompareIgnoresSolarValueWhenExcluded(t *testing.T) {
	in := scenarioA()
	in.IncludeSolar = false
	in.SolarGenerationKWh = math.NaN()

	res, err := Compare(in)
	require.NoError(t, err)
	assert.InDelta(t, 252, res.CostCaptiveWithSolar, eps)
	assert.Zero(t, res.Breakdown.EffectiveSolarKWh)
}

func TestCompareRejectsOverflowingResult(t *testing.T) {
	in := scenarioA()
	in.PeakConsumptionKWh = 1e308
	in.OffPeakConsumptionKWh = 1e308
	in.FreeMarketTariff = 0

	res, err := Compare(in)
	require.Error(t, err)
	assert.Nil(t, res)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	names := verr.Names()
	assert.Contains(t, names, "total_consumption_kwh")
	assert.Contains(t, names, "cost_captive_no_solar")
	assert.Contains(t, names, "cost_free_no_solar")
	for _, f := range verr.Fields {
		assert.Equal(t, ReasonOverflow, f.Reason, f.Field)
	}
}

func TestCompareLargeFiniteResult(t *testing.T) {
	in := scenarioA()
	in.PeakConsumptionKWh = 1e300
	in.OffPeakConsumptionKWh = 1e300

	res, err := Compare(in)
	require.NoError(t, err)
	assert.False(t, math.IsInf(res.CostCaptiveNoSolar, 0))
}

func TestCompareIsSafeForConcurrentUse(t *testing.T) {
	engine := New()
	want, err := engine.Compare(scenarioB())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*model.TariffResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := engine.Compare(scenarioB())
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.NotNil(t, got)
		assert.Equal(t, *want, *got)
	}
}

func TestCompareAllKeepsRejectedScenarios(t *testing.T) {
	bad := scenarioA()
	bad.OffPeakConsumptionKWh = math.NaN()

	out := New().CompareAll([]Scenario{
		{Name: "a", Input: scenarioA()},
		{Name: "bad", Input: bad},
		{Name: "missing", Err: errors.New("peak_consumption_kwh is required")},
		{Name: "b", Input: scenarioB()},
	})
	require.Len(t, out, 4)

	assert.Equal(t, "a", out[0].Name)
	assert.NotNil(t, out[0].Result)

	assert.Nil(t, out[1].Result)
	var verr *model.ValidationError
	assert.True(t, errors.As(out[1].Err, &verr))

	assert.Nil(t, out[2].Result)
	assert.EqualError(t, out[2].Err, "peak_consumption_kwh is required")

	assert.InDelta(t, 69, out[3].Result.SavingsWithSolar, eps)
}
