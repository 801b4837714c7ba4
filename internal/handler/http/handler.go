// Package httphandler contains the echo handlers for the public and bearer API routes.
package httphandler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/domain/uuid"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
	"github.com/lllypuk/styx/internal/middleware"
)

// MessageResponse is the acknowledgement body of mutations without a richer result.
type MessageResponse struct {
	Message string `json:"message"`
}

// requireSubject returns the verified subject; false means the caller must answer with respondUnauthorized.
// Bearer routes already pass through middleware.Auth; this guards against misconfigured groups.
func requireSubject(c echo.Context) (string, bool) {
	subject := middleware.GetSubjectID(c)
	return subject, subject != ""
}

func respondUnauthorized(c echo.Context) error {
	return httpserver.RespondErrorWithCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}

func respondInvalidBody(c echo.Context) error {
	return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
}

// parseID parses a required identifier
func parseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.ParseUUID(raw)
	if err != nil {
		return "", false
	}
	return id, true
}

// parseOptionalID treats "" as absent
func parseOptionalID(raw string) (uuid.UUID, bool) {
	if raw == "" {
		return "", true
	}
	return parseID(raw)
}

func respondInvalidID(c echo.Context, field string) error {
	return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid "+field)
}
