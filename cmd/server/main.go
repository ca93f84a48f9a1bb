package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"braindump-service/internal/config"
	"braindump-service/internal/events"
	"braindump-service/internal/handler"
	"braindump-service/internal/llm"
	"braindump-service/internal/logging"
	"braindump-service/internal/repository"
	"braindump-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default $BRAINDUMP_CONFIG or configs/config.yml)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(config.ResolvePath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Brain Dump Service...")

	// Initialize LLM client (multi-provider with rate limiting)
	llmClient, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
		Providers:   cfg.Providers,
		MaxFailures: cfg.MaxFailuresBeforeSwitch,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM providers", zap.Error(err))
	}
	defer llmClient.Close()

	// Initialize repository
	if cfg.Database.Type == "sqlite" {
		os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755)
	}

	store, err := repository.Open(context.Background(), repository.Config{
		Type: cfg.Database.Type,
		Path: cfg.Database.Path,
		URL:  cfg.Database.URL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer store.Close()

	// Optional event publisher
	var notifier service.Notifier
	if cfg.Events.Enabled {
		publisher, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
		if err != nil {
			logger.Fatal("Failed to initialize event publisher", zap.Error(err))
		}
		defer publisher.Close()
		notifier = publisher
	}

	// Initialize service
	pipeline := service.NewPipeline(llmClient, store, notifier, service.Config{
		ExtractionTimeout: cfg.Extraction.Timeout,
	}, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(
		handler.NewHandler(pipeline, store, logger, cfg.Pipeline.SurfaceWarnings).WithProviders(llmClient))

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", serverAddr))

	// Graceful shutdown
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Get model info for logging
	modelInfo := llmClient.GetModelInfo()
	modelName := "unknown"
	if m, ok := modelInfo["model"].(string); ok {
		modelName = m
	}

	logger.Info("Brain Dump Service is running",
		zap.String("port", cfg.Server.Port),
		zap.String("model", modelName),
		zap.String("database", cfg.Database.Type),
		zap.Bool("events", cfg.Events.Enabled))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// leave room for an in-flight extraction to finish and persist
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Extraction.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
