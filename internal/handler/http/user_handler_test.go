package httphandler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/lllypuk/styx/internal/handler/http"
)

const me = "auth0|me"

func (a *testAPI) register(t *testing.T, subject string) httphandler.UserResponse {
	t.Helper()
	rec := a.do(http.MethodPost, "/api/register", "", httphandler.RegisterRequest{
		UserID: subject, Email: "me@example.com", Name: "Me",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp httphandler.UserResponse
	decode(t, rec, &resp)
	return resp
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t)

	resp := api.register(t, me)

	assert.Equal(t, me, resp.SubjectID)
	assert.Equal(t, "Me", resp.DisplayName)
	assert.Zero(t, resp.Coins)
	assert.Empty(t, resp.Badges)
	assert.NotNil(t, api.users.Get(me))
}

func TestRegister_Duplicate(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, me)

	rec := api.do(http.MethodPost, "/api/register", "", httphandler.RegisterRequest{
		UserID: me, Email: "other@example.com", Name: "Other",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, rec))
	assert.Equal(t, "Me", api.users.Get(me).DisplayName())
}

func TestRegister_Invalid(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/register", "", httphandler.RegisterRequest{UserID: me, Name: "Me"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = api.do(http.MethodPost, "/api/register", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))
}

func TestGetProfile(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, me)

	rec := api.do(http.MethodGet, "/api/profile", me, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.UserResponse
	decode(t, rec, &resp)
	assert.Equal(t, "me@example.com", resp.Email)
}

func TestGetProfile_Errors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name    string
		subject string
		status  int
		code    string
	}{
		{"no token", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad token", "invalid", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not registered", "auth0|ghost", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodGet, "/api/profile", tt.subject, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestUpdateProfile_MergesPresentFields(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, me)

	rec := api.do(http.MethodPut, "/api/profile", me, map[string]string{"bio": "early riser"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.UserResponse
	decode(t, rec, &resp)
	assert.Equal(t, "early riser", resp.Bio)
	assert.Equal(t, "Me", resp.DisplayName)
	assert.Equal(t, "early riser", api.users.Get(me).Bio())
}

func TestUpdateProfile_Conflict(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, me)
	api.users.ConflictsToInject = 100

	rec := api.do(http.MethodPut, "/api/profile", me, map[string]string{"bio": "x"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONCURRENT_MODIFICATION", errorCode(t, rec))
}

func TestUpdatePhoto(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, me)

	rec := api.do(http.MethodPut, "/api/profile/media", me, httphandler.UpdatePhotoRequest{PhotoURL: "https://cdn/me.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cdn/me.png", api.users.Get(me).PhotoURL())

	rec = api.do(http.MethodPut, "/api/profile/media", me, httphandler.UpdatePhotoRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// brokenWriter fails every body write
type brokenWriter struct{ header http.Header }

func (w *brokenWriter) Header() http.Header       { return w.header }
func (w *brokenWriter) WriteHeader(int)           {}
func (w *brokenWriter) Write([]byte) (int, error) { return 0, errBrokenPipe }

var errBrokenPipe = errors.New("broken pipe")

func TestUserHandler_GetProfile_WithoutSubject(t *testing.T) {
	h := httphandler.NewUserHandler(nil, nil, nil, nil)
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h.GetProfile(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/profile", nil), rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")

	// write failures reach echo instead of being dropped
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/profile", nil), &brokenWriter{header: http.Header{}})
	require.ErrorIs(t, h.GetProfile(c), errBrokenPipe)
}
