package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnloop/internal/app"
	"learnloop/internal/config"
	"learnloop/internal/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(app.NewLogger(cfg, os.Stdout))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("Failed to release resources", "error", err)
		}
	}()
	slog.Info("Database initialized", "path", cfg.DBPath, "vector_index", cfg.VectorIndex)

	// A missing embedding backend only affects ingestion and search
	if err := a.VerifyEmbedder(ctx); err != nil {
		slog.Warn("Embedding backend check failed", "error", err)
	} else {
		slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingSize)
	}

	// Bring an external index up to date with the stored vectors
	if cfg.VectorIndex == config.IndexQdrant {
		go func() {
			slog.Info("Starting background index sync")
			n, err := a.Pipeline.SyncIndex(ctx)
			if err != nil {
				slog.Error("Index sync completed with errors", "error", err, "documents", n)
				return
			}
			slog.Info("Index sync completed successfully", "documents", n)
		}()
	}

	router := http.NewRouter(a.RouterDeps())

	addr := ":" + cfg.APIPort
	srv := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", addr)
		slog.Debug("LLM configuration", "provider", cfg.LLMProvider, "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}
