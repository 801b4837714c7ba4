package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/application/appcore"
)

const (
	// RequestIDHeader is the header name for request ID.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the echo context key for request ID.
	RequestIDKey = "request_id"
)

// LoggingConfig holds configuration for the logging middleware.
type LoggingConfig struct {
	Logger    *slog.Logger
	SkipPaths []string
}

// DefaultLoggingConfig returns a LoggingConfig with sensible defaults.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Logger:    slog.Default(),
		SkipPaths: []string{"/health", "/ready", "/metrics"},
	}
}

// Logging assigns a request ID and writes one access log line per request.
// The ID is echoed in X-Request-ID and stored in the request context, where the
// event bus picks it up for published envelopes.
func Logging(config LoggingConfig) echo.MiddlewareFunc {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	skip := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skip[path] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := assignRequestID(c)
			if skip[c.Request().URL.Path] {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := responseStatus(c, err)
			attrs := accessAttrs(c, requestID, status, time.Since(start))
			level := levelForStatus(status)
			if err != nil && level > slog.LevelInfo {
				attrs = append(attrs, slog.String("error", err.Error()))
			}

			logger.LogAttrs(c.Request().Context(), level, "HTTP request", attrs...)
			return err
		}
	}
}

// assignRequestID reuses an incoming X-Request-ID or generates one
func assignRequestID(c echo.Context) string {
	req := c.Request()
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	c.Response().Header().Set(RequestIDHeader, requestID)
	c.Set(RequestIDKey, requestID)
	c.SetRequest(req.WithContext(appcore.WithRequestID(req.Context(), requestID)))
	return requestID
}

// responseStatus prefers the code of an unhandled *echo.HTTPError over the committed status
func responseStatus(c echo.Context, err error) int {
	var he *echo.HTTPError
	if err != nil && errors.As(err, &he) {
		return he.Code
	}
	return c.Response().Status
}

func accessAttrs(c echo.Context, requestID string, status int, latency time.Duration) []slog.Attr {
	req := c.Request()
	attrs := []slog.Attr{
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", status),
		slog.Duration("latency", latency),
		slog.String("remote_ip", c.RealIP()),
		slog.Int64("response_size", c.Response().Size),
	}
	if req.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", req.URL.RawQuery))
	}
	// auth runs inside the route group, so the subject is only known after next(c)
	if subject := GetSubjectID(c); subject != "" {
		attrs = append(attrs, slog.String("subject_id", subject))
	}
	return attrs
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetRequestID retrieves the request ID from the echo context.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
