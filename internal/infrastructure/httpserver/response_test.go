package httpserver_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/user"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

type teapotError struct{}

func (teapotError) Error() string       { return "teapot" }
func (teapotError) HTTPStatus() int     { return http.StatusTeapot }
func (teapotError) HTTPCode() string    { return "TEAPOT" }
func (teapotError) HTTPMessage() string { return "short and stout" }

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) httpserver.Response {
	t.Helper()
	var resp httpserver.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRespondOK(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, httpserver.RespondOK(c, map[string]int{"likesCount": 1}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"likesCount":1}}`, rec.Body.String())
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", appcore.NewValidationError("text", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid input", post.ErrReplyWithoutComment, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"insufficient funds", user.ErrInsufficientFunds, http.StatusBadRequest, "INSUFFICIENT_FUNDS"},
		{"not found", fmt.Errorf("load: %w", post.ErrCommentNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"not owner", post.ErrNotOwner, http.StatusUnauthorized, "NOT_OWNER"},
		{"badge owned", user.ErrBadgeOwned, http.StatusConflict, "ALREADY_EXISTS"},
		{"retries exhausted", appcore.ErrConcurrentUpdate, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"raw conflict", errs.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"transition", errs.ErrInvalidTransition, http.StatusUnprocessableEntity, "INVALID_TRANSITION"},
		{"custom", teapotError{}, http.StatusTeapot, "TEAPOT"},
		{"unknown", errors.New("mongo: connection reset by 10.0.0.7"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext()

			require.NoError(t, httpserver.RespondError(c, tt.err))

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, httpserver.RespondError(c, errors.New("mongo: connection reset by 10.0.0.7")))

	assert.NotContains(t, rec.Body.String(), "10.0.0.7")
}

func TestRespondErrorWithCode(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "bad body"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
	assert.Equal(t, "bad body", resp.Error.Message)
}
