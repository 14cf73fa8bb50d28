package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/notifyhub/announcements/internal/api"
	"github.com/notifyhub/announcements/internal/app"
	"github.com/notifyhub/announcements/internal/config"
	"github.com/notifyhub/announcements/internal/metrics"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.Fatal("invalid server config", zap.Error(err))
	}

	// ---- core dependencies ----
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	application, err := app.New(ctx, cfg, m.Hooks(), logger)
	if err != nil {
		logger.Fatal("failed to build broadcast pipeline", zap.Error(err))
	}
	defer application.Close()

	// ---- HTTP server ----
	router := api.NewRouter(application.Service, cfg.APIKey, cfg.HMACSecret, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("directory", cfg.DirectoryBackend),
			zap.String("provider_mode", cfg.ProviderMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	logger.Info("shutdown signal received")

	// In-flight broadcasts finish their current run before Shutdown returns,
	// bounded by the shutdown timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}
