package main

import (
	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
	"github.com/lllypuk/styx/internal/middleware"
)

// SetupRoutes configures middleware chains and mounts every handler on e.
func SetupRoutes(c *Container, e *echo.Echo) *httpserver.Router {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.Logger = c.Logger

	recoveryConfig := middleware.DefaultRecoveryConfig()
	recoveryConfig.Logger = c.Logger
	recoveryConfig.DisablePrintStack = !c.Config.IsDevelopment()

	router := httpserver.NewRouter(e, httpserver.RouterConfig{
		Logger:              c.Logger,
		AuthMiddleware:      c.AuthMiddleware,
		RateLimitMiddleware: c.RateLimitMiddleware,
		MetricsObserver:     c.Metrics,
		CORSConfig:          middleware.DefaultCORSConfig().WithOrigins(c.Config.Server.AllowedOrigins()),
		LoggingConfig:       loggingConfig,
		RecoveryConfig:      recoveryConfig,
		APIPrefix:           c.Config.Server.APIPrefix,
	})

	// health and metrics live outside the API prefix
	router.RegisterHealthEndpointsWithChecker(c.Health)
	router.RegisterMetricsEndpoint(c.Registry)

	router.RegisterAll(
		c.CatalogHandler,
		c.UserHandler,
		c.CoinHandler,
		c.PostHandler,
		c.CommentHandler,
		c.MediaHandler,
	)

	if c.Config.IsDevelopment() {
		router.PrintRoutes()
	}

	return router
}
