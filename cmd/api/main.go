package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tick-backtest/internal/api"
	"tick-backtest/internal/api/handlers"
	"tick-backtest/internal/data"
	"tick-backtest/internal/logging"
	"tick-backtest/internal/runner"
)

func main() {
	logger := logging.NewLogger().Named("api")
	defer func() { _ = logger.Sync() }()

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	feedsDir := data.DefaultFeedsDir()
	if info, err := os.Stat(feedsDir); err != nil || !info.IsDir() {
		logger.Warnw("Feeds directory not found; only synthetic and remote feeds are available", "dir", feedsDir)
	}

	r, err := runner.New(logger)
	if err != nil {
		logger.Fatalw("Failed to create runner", zap.Error(err))
	}
	if r.Remote != nil {
		logger.Infow("Remote feed service configured", "url", r.Remote.BaseURL)
	}
	results, err := handlers.NewResultStore(0)
	if err != nil {
		logger.Fatalw("Failed to create result store", zap.Error(err))
	}

	router := api.NewRouter(api.Options{
		Runner:         r,
		Results:        results,
		FeedsDir:       feedsDir,
		AllowedOrigins: splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infow("Starting API server", "addr", srv.Addr, "feeds_dir", feedsDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
