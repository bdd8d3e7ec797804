package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oraculx/financewise/internal/config"
	"github.com/oraculx/financewise/internal/gateway/gemini"
	apphttp "github.com/oraculx/financewise/internal/http"
	"github.com/oraculx/financewise/internal/services"
	"github.com/oraculx/financewise/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// The AI gateways are optional: without an API key the tracker runs
	// with manual entry only and insight requests answer with the
	// fallback analysis.
	var (
		insights  services.InsightProvider
		extractor services.Extractor
	)
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client, continuing without AI features", "error", err)
		} else {
			insights, extractor = client, client
			logger.Info("Initialized Gemini gateway", "model", cfg.GeminiModel)
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, AI features disabled")
	}

	tracker := services.NewTracker(store, insights, extractor)
	srv := apphttp.NewServer(":"+cfg.Port, tracker, cfg.MaxImportBytes)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 60 * time.Second // insight calls wait on the model
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting financewise server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
