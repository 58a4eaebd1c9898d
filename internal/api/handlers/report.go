package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tariff-compare/internal/api/models"
	"tariff-compare/internal/comparison"
	"tariff-compare/internal/config"
	"tariff-compare/internal/metrics"
	"tariff-compare/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type renderer struct {
	contentType string
	write       func(io.Writer, report.Report) error
}

var renderers = map[string]renderer{
	"pdf":  {contentTypePDF, report.WritePDF},
	"xlsx": {contentTypeXLSX, report.WriteXLSX},
}

// ReportHandler renders downloadable comparison reports
type ReportHandler struct {
	engine   *comparison.Engine
	defaults config.Defaults
	opts     config.AppConfigReport
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewReportHandler creates a new report handler. m may be nil.
func NewReportHandler(defaults config.Defaults, opts config.AppConfigReport, m *metrics.Metrics, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		engine:   comparison.New(),
		defaults: defaults,
		opts:     opts,
		metrics:  m,
		logger:   logger,
	}
}

// Report handles POST /api/v1/report?format=pdf|xlsx
func (h *ReportHandler) Report(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "pdf"))
	rnd, ok := renderers[format]
	if !ok {
		invalidRequest(c, fmt.Errorf("unsupported format %q (expected pdf or xlsx)", format))
		return
	}

	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	in, err := buildInputConfig(req.TariffFields).ToModelInput(h.defaults)
	if err != nil {
		h.metrics.ObserveReport(format, err)
		writeInputError(c, err)
		return
	}
	res, err := h.engine.Compare(in)
	if err != nil {
		h.metrics.ObserveReport(format, err)
		writeInputError(c, err)
		return
	}

	title := req.Title
	if title == "" {
		title = h.opts.Title
	}
	company := req.Company
	if company == "" {
		company = h.opts.Company
	}
	r := report.New(in, res, report.Options{
		Title:    title,
		Company:  company,
		State:    req.State,
		Currency: h.opts.Currency,
	})

	var buf bytes.Buffer
	if err := rnd.write(&buf, r); err != nil {
		h.metrics.ObserveReport(format, err)
		h.logger.Error("report rendering failed",
			zap.String("format", format),
			zap.String("report_id", r.ID.String()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "REPORT_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	h.metrics.ObserveReport(format, nil)

	h.logger.Info("report rendered",
		zap.String("format", format),
		zap.String("report_id", r.ID.String()),
		zap.Int("bytes", buf.Len()))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.Filename(format)))
	c.Header("X-Report-ID", r.ID.String())
	c.Data(http.StatusOK, rnd.contentType, buf.Bytes())
}
