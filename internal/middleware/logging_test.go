package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/middleware"
)

func loggedEcho(buf *bytes.Buffer) *echo.Echo {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := echo.New()
	e.Use(middleware.Logging(middleware.LoggingConfig{Logger: logger, SkipPaths: []string{"/health"}}))
	e.GET("/api/posts/running", func(c echo.Context) error {
		return c.String(http.StatusOK, appcore.RequestID(c.Request().Context()))
	})
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/missing", func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})
	e.GET("/boom", func(_ echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "boom")
	})
	e.GET("/fail", func(_ echo.Context) error {
		return errors.New("plain failure")
	})
	return e
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestDefaultLoggingConfig(t *testing.T) {
	config := middleware.DefaultLoggingConfig()

	assert.NotNil(t, config.Logger)
	assert.Contains(t, config.SkipPaths, "/health")
}

func TestLogging_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := loggedEcho(&buf)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/running?x=1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	requestID := rec.Header().Get(middleware.RequestIDHeader)
	require.NotEmpty(t, requestID)
	assert.Equal(t, requestID, rec.Body.String())

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, "HTTP request", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, requestID, entry["request_id"])
	assert.Equal(t, "x=1", entry["query"])
	assert.InDelta(t, 200, entry["status"], 0)
}

func TestLogging_KeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := loggedEcho(&buf)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/running", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "req-123", rec.Body.String())
}

func TestLogging_SkipPathStillGetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := loggedEcho(&buf)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Empty(t, buf.String())
}

func TestLogging_Levels(t *testing.T) {
	tests := []struct {
		path  string
		level string
	}{
		{"/missing", "WARN"},
		{"/boom", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var buf bytes.Buffer
			e := loggedEcho(&buf)

			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.level, decodeLogLine(t, &buf)["level"])
		})
	}
}

func TestLogging_BoomCarriesError(t *testing.T) {
	var buf bytes.Buffer
	e := loggedEcho(&buf)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Contains(t, decodeLogLine(t, &buf)["error"], "boom")
}

func TestGetRequestID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Empty(t, middleware.GetRequestID(c))

	c.Set(middleware.RequestIDKey, "abc")
	assert.Equal(t, "abc", middleware.GetRequestID(c))
}
