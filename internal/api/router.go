package api

import (
	"net/http"

	"tariff-compare/internal/api/handlers"
	"tariff-compare/internal/api/middleware"
	"tariff-compare/internal/api/models"
	"tariff-compare/internal/config"
	"tariff-compare/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires middleware and routes. m may be nil, in which case
// /metrics is not served and nothing is counted.
func NewRouter(cfg *config.AppConfig, logger *zap.Logger, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Api.CorsOrigins))
	if m != nil {
		router.Use(middleware.Metrics(m))
	}

	compareHandler := handlers.NewCompareHandler(cfg.Defaults, cfg.Report.Currency, m, logger)
	reportHandler := handlers.NewReportHandler(cfg.Defaults, cfg.Report, m, logger)
	fieldsHandler := handlers.NewFieldsHandler(cfg.Defaults, cfg.Report.Currency)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/fields", fieldsHandler.ListFields)
		v1.POST("/compare", compareHandler.Compare)
		v1.POST("/compare/batch", compareHandler.CompareBatch)
		v1.POST("/report", reportHandler.Report)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
		})
	})

	return router
}
