package handlers

import (
	"errors"
	"net/http"

	"tariff-compare/internal/analysis"
	"tariff-compare/internal/api/models"
	"tariff-compare/internal/config"
	"tariff-compare/internal/model"

	"github.com/gin-gonic/gin"
)

func buildInputConfig(f models.TariffFields) config.InputConfig {
	return config.InputConfig{
		PeakConsumptionKWh:    f.PeakConsumptionKWh,
		OffPeakConsumptionKWh: f.OffPeakConsumptionKWh,
		CaptivePeakTariff:     f.CaptivePeakTariff,
		CaptiveOffPeakTariff:  f.CaptiveOffPeakTariff,
		TaxRatePercent:        f.TaxRatePercent,
		FreeMarketTariff:      f.FreeMarketTariff,
		IncludeSolar:          f.IncludeSolar,
		SolarGenerationKWh:    f.SolarGenerationKWh,
		CaptiveOffsetPercent:  f.CaptiveOffsetPercent,
		FreeOffsetPercent:     f.FreeOffsetPercent,
	}
}

func buildResultBody(res *model.TariffResult) models.ResultBody {
	return models.ResultBody{
		CostCaptiveWithSolar: res.CostCaptiveWithSolar,
		CostFreeWithSolar:    res.CostFreeWithSolar,
		CostCaptiveNoSolar:   res.CostCaptiveNoSolar,
		CostFreeNoSolar:      res.CostFreeNoSolar,
		SavingsWithSolar:     res.SavingsWithSolar,
		SavingsNoSolar:       res.SavingsNoSolar,
	}
}

func buildBreakdownBody(b model.Breakdown) models.BreakdownBody {
	return models.BreakdownBody{
		PeakConsumptionKWh:    b.PeakConsumptionKWh,
		OffPeakConsumptionKWh: b.OffPeakConsumptionKWh,
		TotalConsumptionKWh:   b.TotalConsumptionKWh,
		CaptivePeakTariff:     b.CaptivePeakTariff,
		CaptiveOffPeakTariff:  b.CaptiveOffPeakTariff,
		FreeMarketTariff:      b.FreeMarketTariff,
		AverageCaptiveTariff:  b.AverageCaptiveTariff,
		GrossCaptiveCost:      b.GrossCaptiveCost,
		TaxFraction:           b.TaxFraction,
		EffectiveSolarKWh:     b.EffectiveSolarKWh,
		CappedSolarKWh:        b.CappedSolarKWh,
		CaptiveOffsetFraction: b.CaptiveOffsetFraction,
		FreeOffsetFraction:    b.FreeOffsetFraction,
		SolarDiscountCaptive:  b.SolarDiscountCaptive,
		SolarDiscountFree:     b.SolarDiscountFree,
	}
}

func buildAnalysisBody(p analysis.SavingsPotential) models.AnalysisBody {
	var out models.AnalysisBody
	if p.HasBreakEven {
		v := p.BreakEvenFreeTariff
		out.BreakEvenFreeTariff = &v
	}
	if p.HasSavingsPercent {
		with, no := p.SavingsPercentWithSolar, p.SavingsPercentNoSolar
		out.SavingsPercentWithSolar = &with
		out.SavingsPercentNoSolar = &no
	}
	return out
}

func fieldIssues(verr *model.ValidationError) []models.FieldIssue {
	out := make([]models.FieldIssue, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, models.FieldIssue{Field: f.Field, Reason: f.Reason})
	}
	return out
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// writeInputError answers 400 VALIDATION_FAILED with the offending fields, or
// 500 when err is not a validation error.
func writeInputError(c *gin.Context, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "VALIDATION_FAILED",
				Message: err.Error(),
				Details: map[string]interface{}{
					"fields": fieldIssues(verr),
				},
			},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
		},
	})
}
