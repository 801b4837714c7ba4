package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/lllypuk/styx/internal/config"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

// multipart framing on top of the largest accepted file
const uploadOverheadBytes = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("starting styx API server",
		slog.String("app", cfg.App.Name),
		slog.String("environment", cfg.App.Env),
	)

	container, err := NewContainer(cfg, WithLogger(logger))
	if err != nil {
		logger.Error("failed to build container", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if startErr := container.StartEventBus(ctx); startErr != nil {
		logger.Error("failed to start event bus", slog.String("error", startErr.Error()))
		_ = container.Close()
		os.Exit(1) //nolint:gocritic // Intentional exit after cleanup
	}

	server := httpserver.NewServer(serverConfig(cfg), logger)
	SetupRoutes(container, server.Echo())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err = <-serverErr:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}

	// stop accepting requests before tearing down the stores they use
	if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
		logger.Error("server shutdown error", slog.String("error", shutdownErr.Error()))
	}
	stop()

	if closeErr := container.Close(); closeErr != nil {
		logger.Error("container close error", slog.String("error", closeErr.Error()))
	}

	logger.Info("server shutdown complete")
	if err != nil {
		os.Exit(1)
	}
}

func serverConfig(cfg *config.Config) httpserver.ServerConfig {
	sc := httpserver.DefaultServerConfig()
	sc.Host = cfg.Server.Host
	sc.Port = cfg.Server.Port
	sc.ReadTimeout = cfg.Server.ReadTimeout
	sc.WriteTimeout = cfg.Server.WriteTimeout
	sc.IdleTimeout = cfg.Server.IdleTimeout
	sc.ShutdownTimeout = cfg.Server.ShutdownTimeout
	sc.BodyLimit = strconv.FormatInt(cfg.Media.MaxUploadBytes+uploadOverheadBytes, 10)
	return sc
}

// setupLogger creates and configures the structured logger based on configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Log.Level),
		AddSource: cfg.IsDevelopment(),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
