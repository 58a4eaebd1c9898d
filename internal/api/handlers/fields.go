package handlers

import (
	"net/http"

	"tariff-compare/internal/api/models"
	"tariff-compare/internal/config"
	"tariff-compare/internal/model"

	"github.com/gin-gonic/gin"
)

// FieldsHandler describes the comparison inputs
type FieldsHandler struct {
	defaults config.Defaults
	currency string
}

// NewFieldsHandler creates a new fields handler
func NewFieldsHandler(defaults config.Defaults, currency string) *FieldsHandler {
	return &FieldsHandler{defaults: defaults, currency: currency}
}

// ListFields handles GET /api/v1/fields
func (h *FieldsHandler) ListFields(c *gin.Context) {
	perKWh := h.currency + "/kWh"
	fields := []models.FieldInfo{
		{
			Name:        model.FieldPeakConsumption,
			Type:        "float",
			Unit:        "kWh",
			Description: "Monthly consumption in the peak period",
			Required:    true,
		},
		{
			Name:        model.FieldOffPeakConsumption,
			Type:        "float",
			Unit:        "kWh",
			Description: "Monthly consumption outside the peak period",
			Required:    true,
		},
		{
			Name:        model.FieldCaptivePeakTariff,
			Type:        "float",
			Unit:        perKWh,
			Description: "Captive market (regulated utility) tariff in the peak period",
			Required:    true,
		},
		{
			Name:        model.FieldCaptiveOffPeakTariff,
			Type:        "float",
			Unit:        perKWh,
			Description: "Captive market tariff outside the peak period",
			Required:    true,
		},
		{
			Name:        model.FieldTaxRatePercent,
			Type:        "float",
			Unit:        "%",
			Description: "Tax rate applied to the captive market cost (e.g. 18 for 18%)",
			Required:    true,
		},
		{
			Name:        model.FieldFreeMarketTariff,
			Type:        "float",
			Unit:        perKWh,
			Description: "Flat free market tariff, taxes included",
			Required:    true,
		},
		{
			Name:        model.FieldIncludeSolar,
			Type:        "bool",
			Description: "Credit solar generation against both regimes",
			Default:     false,
		},
		{
			Name:        model.FieldSolarGeneration,
			Type:        "float",
			Unit:        "kWh",
			Description: "Monthly solar generation; required when include_solar is true. Generation above total consumption is not credited",
		},
		{
			Name:        model.FieldCaptiveOffsetPercent,
			Type:        "float",
			Unit:        "%",
			Description: "Share of solar generation credited in the captive market",
			Default:     h.defaults.CaptiveOffsetPercent,
		},
		{
			Name:        model.FieldFreeOffsetPercent,
			Type:        "float",
			Unit:        "%",
			Description: "Share of solar generation credited in the free market",
			Default:     h.defaults.FreeOffsetPercent,
		},
	}

	c.JSON(http.StatusOK, gin.H{"fields": fields})
}
