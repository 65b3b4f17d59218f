package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legendai-gateway/internal/app"
	"legendai-gateway/internal/config"
)

func main() {
	ctx := context.Background()

	// ---- Configuration ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := app.NewLogger(os.Stdout, cfg.App.Debug)
	slog.SetDefault(logger)

	// ---- Router ----
	r, err := app.Build(ctx, cfg, app.Options{Logger: logger})
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			logger.Error("GROQ_API_KEY is not set; set it or ALLOW_MISSING_API_KEY=true to start without it")
		} else {
			logger.Error("failed to build application", "err", err)
		}
		os.Exit(1)
	}

	// ---- HTTP server ----
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Groq.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
		}
	}()

	logger.Info("LegendAI gateway listening",
		"addr", cfg.Addr(),
		"model", cfg.Groq.Model,
		"debug", cfg.App.Debug,
	)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
