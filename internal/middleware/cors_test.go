package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/styx/internal/middleware"
)

func corsEcho(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw)
	e.GET("/api/badges", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func TestDefaultCORSConfig(t *testing.T) {
	config := middleware.DefaultCORSConfig()

	assert.Equal(t, []string{"*"}, config.AllowOrigins)
	assert.Contains(t, config.AllowMethods, echo.PUT)
	assert.Contains(t, config.AllowHeaders, echo.HeaderAuthorization)
	assert.Contains(t, config.ExposeHeaders, middleware.RequestIDHeader)
	assert.False(t, config.AllowCredentials)
}

func TestCORS_AnyOrigin(t *testing.T) {
	e := corsEcho(middleware.CORS(middleware.DefaultCORSConfig()))

	req := httptest.NewRequest(http.MethodGet, "/api/badges", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORS_Preflight(t *testing.T) {
	e := corsEcho(middleware.CORS(middleware.DefaultCORSConfig()))

	req := httptest.NewRequest(http.MethodOptions, "/api/badges", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPut)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPut)
	assert.Equal(t, "86400", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestCORSConfig_WithOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, middleware.DefaultCORSConfig().WithOrigins(nil).AllowOrigins)

	e := corsEcho(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins([]string{"https://allowed.example.com"})))

	allowed := httptest.NewRequest(http.MethodGet, "/api/badges", nil)
	allowed.Header.Set(echo.HeaderOrigin, "https://allowed.example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, allowed)
	assert.Equal(t, "https://allowed.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	denied := httptest.NewRequest(http.MethodGet, "/api/badges", nil)
	denied.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, denied)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
