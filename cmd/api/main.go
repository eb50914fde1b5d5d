package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/riskibarqy/rugby-analytics/internal/app"
	"github.com/riskibarqy/rugby-analytics/internal/config"
	"github.com/riskibarqy/rugby-analytics/internal/observability"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).Named("api")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, "api", logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	profiling, err := observability.StartProfiling(cfg, logger)
	if err != nil {
		logger.Error("start profiling", "error", err)
		os.Exit(1)
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	srv, err := a.NewHTTPServer()
	if err != nil {
		logger.Error("build http server", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := profiling.Stop(shutdownCtx); err != nil {
		logger.Warn("stop profiling failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("uptrace shutdown failed", "error", err)
	}
	if err := a.Close(); err != nil {
		logger.Warn("close app failed", "error", err)
	}

	logger.Info("http server stopped")
}
