package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Probe statuses shared by /health, /ready and /health/details.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded" // an optional dependency (redis, event bus) is down
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
)

// ComponentStatus is one dependency in a probe answer.
type ComponentStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the probe body. Probes are not wrapped in the API envelope
// so that orchestrators can read them directly.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// HealthChecker reports dependency state; healthcheck.Aggregator implements it.
type HealthChecker interface {
	IsReady(ctx context.Context) bool
	GetHealthStatus(ctx context.Context) []ComponentStatus
}

// HealthEndpoints serves the liveness, readiness and details probes.
type HealthEndpoints struct {
	checker HealthChecker
}

// NewHealthEndpoints creates probes over checker; a nil checker always reports ready.
func NewHealthEndpoints(checker HealthChecker) *HealthEndpoints {
	return &HealthEndpoints{checker: checker}
}

// Register mounts GET /health, /ready and /health/details on e.
func (h *HealthEndpoints) Register(e *echo.Echo) {
	e.GET("/health", h.live)
	e.GET("/ready", h.ready)
	e.GET("/health/details", h.details)
}

func (h *HealthEndpoints) live(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: StatusHealthy})
}

func (h *HealthEndpoints) ready(c echo.Context) error {
	ctx := c.Request().Context()
	components := h.components(ctx)

	if h.checker != nil && !h.checker.IsReady(ctx) {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: StatusNotReady, Components: components})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: StatusReady, Components: components})
}

func (h *HealthEndpoints) details(c echo.Context) error {
	components := h.components(c.Request().Context())

	status := overallStatus(components)
	code := http.StatusOK
	if status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, HealthResponse{Status: status, Components: components})
}

func (h *HealthEndpoints) components(ctx context.Context) []ComponentStatus {
	if h.checker == nil {
		return nil
	}
	return h.checker.GetHealthStatus(ctx)
}

// overallStatus: any unhealthy component wins over degraded
func overallStatus(components []ComponentStatus) string {
	status := StatusHealthy
	for _, comp := range components {
		switch comp.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// RegisterHealthEndpointsWithChecker mounts the probes outside the API prefix.
func (r *Router) RegisterHealthEndpointsWithChecker(checker HealthChecker) {
	NewHealthEndpoints(checker).Register(r.echo)
}
