package handlers

import (
	"errors"
	"net/http"

	"tariff-compare/internal/analysis"
	"tariff-compare/internal/api/models"
	"tariff-compare/internal/comparison"
	"tariff-compare/internal/config"
	"tariff-compare/internal/metrics"
	"tariff-compare/internal/model"
	"tariff-compare/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CompareHandler handles comparison requests
type CompareHandler struct {
	engine   *comparison.Engine
	defaults config.Defaults
	currency string
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewCompareHandler creates a new compare handler. m may be nil.
func NewCompareHandler(defaults config.Defaults, currency string, m *metrics.Metrics, logger *zap.Logger) *CompareHandler {
	return &CompareHandler{
		engine:   comparison.New(),
		defaults: defaults,
		currency: currency,
		metrics:  m,
		logger:   logger,
	}
}

// Compare handles POST /api/v1/compare
func (h *CompareHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	in, err := buildInputConfig(req.TariffFields).ToModelInput(h.defaults)
	if err != nil {
		h.metrics.ObserveComparison(err)
		writeInputError(c, err)
		return
	}

	res, err := h.engine.Compare(in)
	h.metrics.ObserveComparison(err)
	if err != nil {
		writeInputError(c, err)
		return
	}

	h.logger.Debug("comparison computed",
		zap.Float64("savings_with_solar", res.SavingsWithSolar),
		zap.Bool("include_solar", in.IncludeSolar))

	c.JSON(http.StatusOK, models.CompareResponse{
		Result:    buildResultBody(res),
		Breakdown: buildBreakdownBody(res.Breakdown),
		Analysis:  buildAnalysisBody(analysis.ComputePotential(in, res)),
		Headline:  report.Headline(h.currency, res),
	})
}

// CompareBatch handles POST /api/v1/compare/batch
func (h *CompareHandler) CompareBatch(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	file := config.ScenarioFile{Base: buildInputConfig(req.Base)}
	for _, sc := range req.Scenarios {
		file.Scenarios = append(file.Scenarios, config.ScenarioConfig{
			Name:  sc.Name,
			Input: buildInputConfig(sc.Input),
		})
	}
	if err := file.Validate(); err != nil {
		invalidRequest(c, err)
		return
	}

	results := h.engine.CompareAll(file.Build(h.defaults))

	resp := models.BatchResponse{Results: []models.RankedResult{}}
	for _, r := range results {
		h.metrics.ObserveComparison(r.Err)
		if r.Err == nil {
			continue
		}
		rej := models.RejectedScenario{Name: r.Name, Error: r.Err.Error()}
		var verr *model.ValidationError
		if errors.As(r.Err, &verr) {
			rej.Fields = fieldIssues(verr)
		}
		resp.Rejected = append(resp.Rejected, rej)
	}
	for _, r := range analysis.RankBySavings(results) {
		resp.Results = append(resp.Results, models.RankedResult{
			Rank:     r.Rank,
			Name:     r.Name,
			Result:   buildResultBody(r.Result),
			Analysis: buildAnalysisBody(analysis.ComputePotential(r.Input, r.Result)),
		})
	}

	h.logger.Info("batch compared",
		zap.Int("scenarios", len(results)),
		zap.Int("rejected", len(resp.Rejected)))
	c.JSON(http.StatusOK, resp)
}
