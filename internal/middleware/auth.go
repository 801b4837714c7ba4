package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/application/appcore"
)

// Context keys for authentication data.
type contextKey string

const (
	// ContextKeySubjectID is the echo context key for the verified token subject.
	ContextKeySubjectID contextKey = "subject_id"
)

// Auth errors.
var (
	ErrMissingAuthHeader   = errors.New("missing authorization header")
	ErrInvalidAuthHeader   = errors.New("invalid authorization header format")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrVerifierUnavailable = errors.New("token verifier unavailable")
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Logger is the structured logger for auth events.
	Logger *slog.Logger

	// Verifier validates bearer tokens.
	Verifier TokenVerifier

	// SkipPaths are paths that don't require authentication.
	SkipPaths []string
}

// DefaultAuthConfig returns an AuthConfig with sensible defaults.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Logger:    slog.Default(),
		SkipPaths: []string{"/health", "/ready", "/health/details", "/metrics"},
	}
}

// Auth returns an authentication middleware. On success the subject is stored in the echo
// context and in the request context (appcore.SubjectID).
func Auth(config AuthConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if _, ok := skipPaths[path]; ok {
				return next(c)
			}

			token, tokenErr := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if tokenErr != nil {
				return respondAuthError(c, tokenErr)
			}

			if config.Verifier == nil {
				config.Logger.Error("token verifier not configured")
				return respondAuthError(c, ErrVerifierUnavailable)
			}

			ctx := c.Request().Context()
			subject, verifyErr := config.Verifier.VerifyToken(ctx, token)
			if verifyErr != nil {
				level := slog.LevelWarn
				if errors.Is(verifyErr, ErrVerifierUnavailable) {
					level = slog.LevelError
				}
				config.Logger.Log(ctx, level, "token verification failed",
					slog.String("error", verifyErr.Error()),
					slog.String("path", path),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondAuthError(c, verifyErr)
			}

			c.Set(string(ContextKeySubjectID), subject)
			c.SetRequest(c.Request().WithContext(appcore.WithSubjectID(ctx, subject)))

			config.Logger.Debug("request authenticated",
				slog.String("subject_id", subject),
				slog.String("path", path),
			)

			return next(c)
		}
	}
}

// extractBearerToken extracts the token from a Bearer authorization header.
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", ErrInvalidAuthHeader
	}

	return token, nil
}

// respondAuthError sends an authentication error response.
func respondAuthError(c echo.Context, err error) error {
	code := "UNAUTHORIZED"
	message := "Authentication required"
	status := http.StatusUnauthorized

	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		message = "Missing authorization header"
	case errors.Is(err, ErrInvalidAuthHeader):
		message = "Invalid authorization header format"
	case errors.Is(err, ErrTokenExpired):
		message = "Token has expired"
		code = "TOKEN_EXPIRED"
	case errors.Is(err, ErrVerifierUnavailable):
		message = "Token verification is temporarily unavailable"
		code = "VERIFIER_UNAVAILABLE"
		status = http.StatusInternalServerError
	case errors.Is(err, ErrInvalidToken):
		message = "Invalid token"
	}

	return c.JSON(status, map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// GetSubjectID extracts the verified subject from the echo context.
func GetSubjectID(c echo.Context) string {
	if id, ok := c.Get(string(ContextKeySubjectID)).(string); ok {
		return id
	}
	return ""
}
