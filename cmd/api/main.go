package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/facelens/internal/api"
	"github.com/saturnino-fabrica-de-software/facelens/internal/audit"
	"github.com/saturnino-fabrica-de-software/facelens/internal/config"
	"github.com/saturnino-fabrica-de-software/facelens/internal/face"
	"github.com/saturnino-fabrica-de-software/facelens/internal/render"
	"github.com/saturnino-fabrica-de-software/facelens/internal/service"
	"github.com/saturnino-fabrica-de-software/facelens/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting FaceLens API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.ProviderType),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Model providers
	providers, err := face.NewProviderSet(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	renderer, err := render.NewRenderer(render.DefaultStyle())
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	output, err := storage.NewOutputDir(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output dir: %w", err)
	}

	faceService := service.NewFaceService(providers, renderer, output, service.Options{
		EnrichWorkers:     cfg.EnrichWorkers,
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
		QueueTimeout:      cfg.JobQueueTimeout,
		JPEGQuality:       cfg.JPEGQuality,
	}, logger).WithAudit(audit.NewSlogLogger(logger))

	// Setup router
	router := api.NewRouter(logger, api.Config{
		Host:             fmt.Sprintf("localhost:%d", cfg.Port),
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		MaxImageSize:     cfg.MaxImageSize,
		RateLimitMax:     cfg.RateLimitMax,
		RateLimitWindow:  cfg.RateLimitWindow,
	}, &api.Dependencies{
		FaceService:  faceService,
		ProviderName: providers.Name,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr), slog.String("output_dir", output.Dir()))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}
