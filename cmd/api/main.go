package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tariff-compare/internal/api"
	"tariff-compare/internal/config"
	"tariff-compare/internal/logging"
	"tariff-compare/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML (optional; TARIFF_* env vars override)")
	flag.Parse()

	cfg, err := config.LoadApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Api.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	router := api.NewRouter(cfg, logger, m)
	server := api.NewServer(cfg.Api.Addr(), router, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tariff comparison api configured",
		zap.String("env", cfg.Api.Env),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Strings("cors_origins", cfg.Api.CorsOrigins),
		zap.String("currency", cfg.Report.Currency))

	if err := server.Run(ctx); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
	logger.Info("http server stopped")
}
