package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/areacheck/property-insight-service/internal/adapter/http"
	"github.com/areacheck/property-insight-service/internal/adapter/opendata"
	"github.com/areacheck/property-insight-service/internal/config"
	"github.com/areacheck/property-insight-service/internal/insight"
	"github.com/areacheck/property-insight-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := opendata.NewClient(cfg, metrics, logger)
	svc := insight.New(client, cfg.InsightYears, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("property insight service started",
		"addr", cfg.HTTPAddr,
		"open_data_base_url", cfg.OpenDataBaseURL,
		"insight_years", cfg.InsightYears,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
