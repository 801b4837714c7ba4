package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lllypuk/styx/internal/middleware"
)

// DefaultAPIPrefix is where every business route is mounted.
const DefaultAPIPrefix = "/api"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger *slog.Logger

	// AuthMiddleware guards the bearer group.
	AuthMiddleware echo.MiddlewareFunc

	// RateLimitMiddleware is optional. It runs inside the route groups,
	// after AuthMiddleware on bearer routes, so it can key by subject.
	RateLimitMiddleware echo.MiddlewareFunc

	// MetricsObserver receives per-request observations. Optional.
	MetricsObserver middleware.HTTPObserver

	CORSConfig     middleware.CORSConfig
	LoggingConfig  middleware.LoggingConfig
	RecoveryConfig middleware.RecoveryConfig

	// APIPrefix defaults to "/api".
	APIPrefix string
}

// DefaultRouterConfig returns a RouterConfig with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Logger:         slog.Default(),
		CORSConfig:     middleware.DefaultCORSConfig(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		RecoveryConfig: middleware.DefaultRecoveryConfig(),
		APIPrefix:      DefaultAPIPrefix,
	}
}

// Router manages HTTP route groups and middleware chains.
type Router struct {
	echo   *echo.Echo
	config RouterConfig
	logger *slog.Logger

	public *echo.Group
	auth   *echo.Group
}

// NewRouter creates a new router with the given configuration.
func NewRouter(e *echo.Echo, config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.APIPrefix == "" {
		config.APIPrefix = DefaultAPIPrefix
	}

	r := &Router{
		echo:   e,
		config: config,
		logger: config.Logger,
	}

	r.setupGlobalMiddleware()
	r.setupRouteGroups()

	return r
}

func (r *Router) setupGlobalMiddleware() {
	// recovery первым, чтобы ловить панику в любом middleware
	r.echo.Use(middleware.RecoveryWithConfig(r.config.RecoveryConfig))
	r.echo.Use(middleware.CORS(r.config.CORSConfig))
	r.echo.Use(middleware.Logging(r.config.LoggingConfig))

	if r.config.MetricsObserver != nil {
		r.echo.Use(middleware.Metrics(r.config.MetricsObserver))
	}
}

func (r *Router) setupRouteGroups() {
	var limit []echo.MiddlewareFunc
	if r.config.RateLimitMiddleware != nil {
		limit = append(limit, r.config.RateLimitMiddleware)
	}

	// sibling groups on one prefix: bearer routes must not pass the public limiter as well
	r.public = r.echo.Group(r.config.APIPrefix, limit...)

	if r.config.AuthMiddleware == nil {
		r.auth = r.public
		r.logger.Warn("no auth middleware configured, authenticated routes are public")
		return
	}
	r.auth = r.echo.Group(r.config.APIPrefix, append([]echo.MiddlewareFunc{r.config.AuthMiddleware}, limit...)...)

	// the auth group registered the prefix catch-all behind the token check; unknown API paths are 404, not 401
	r.public.RouteNotFound("", echo.NotFoundHandler)
	r.public.RouteNotFound("/*", echo.NotFoundHandler)
}

// Echo returns the underlying Echo instance.
func (r *Router) Echo() *echo.Echo {
	return r.echo
}

// Public returns the route group that needs no credential.
func (r *Router) Public() *echo.Group {
	return r.public
}

// Auth returns the route group that requires a valid bearer token.
func (r *Router) Auth() *echo.Group {
	return r.auth
}

// RouteRegistrar defines the interface for registering routes.
type RouteRegistrar interface {
	RegisterRoutes(r *Router)
}

// RegisterAll registers all route registrars with the router.
func (r *Router) RegisterAll(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r)
	}
}

// PrintRoutes logs all registered routes (for debugging).
func (r *Router) PrintRoutes() {
	for _, route := range r.echo.Routes() {
		r.logger.Debug("registered route",
			slog.String("method", route.Method),
			slog.String("path", route.Path),
		)
	}
}

// RegisterMetricsEndpoint exposes gatherer on /metrics outside the API prefix.
func (r *Router) RegisterMetricsEndpoint(gatherer prometheus.Gatherer) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
