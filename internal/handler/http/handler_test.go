package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/application/catalog"
	"github.com/lllypuk/styx/internal/application/ledger"
	"github.com/lllypuk/styx/internal/application/media"
	postapp "github.com/lllypuk/styx/internal/application/post"
	"github.com/lllypuk/styx/internal/application/reward"
	"github.com/lllypuk/styx/internal/application/thread"
	userapp "github.com/lllypuk/styx/internal/application/user"
	"github.com/lllypuk/styx/internal/domain/badge"
	"github.com/lllypuk/styx/internal/domain/category"
	httphandler "github.com/lllypuk/styx/internal/handler/http"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
	"github.com/lllypuk/styx/internal/middleware"
	"github.com/lllypuk/styx/tests/mocks"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// tokenVerifier treats the bearer token as the subject
type tokenVerifier struct{}

func (tokenVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if token == "invalid" {
		return "", middleware.ErrInvalidToken
	}
	return token, nil
}

type staticBadges []badge.Badge

func (s staticBadges) List(context.Context) ([]badge.Badge, error) { return s, nil }

type staticCategories []category.Category

func (s staticCategories) List(context.Context) ([]category.Category, error) { return s, nil }

type memoryObjects struct {
	data  map[string][]byte
	types map[string]string
}

func (m *memoryObjects) Put(_ context.Context, obj media.Object) (string, error) {
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	m.data[obj.Key] = b
	m.types[obj.Key] = obj.ContentType
	return "/api/media/files/" + obj.Key, nil
}

func (m *memoryObjects) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	b, ok := m.data[key]
	if !ok {
		return nil, "", media.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), m.types[key], nil
}

// testAPI wires real use cases over in-memory repositories behind the real router
type testAPI struct {
	router  *httpserver.Router
	users   *mocks.UserRepository
	posts   *mocks.PostRepository
	bus     *mocks.EventBus
	objects *memoryObjects
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	api := &testAPI{
		users:   mocks.NewUserRepository(),
		posts:   mocks.NewPostRepository(),
		bus:     mocks.NewEventBus(),
		objects: &memoryObjects{data: map[string][]byte{}, types: map[string]string{}},
	}

	authConfig := middleware.DefaultAuthConfig()
	authConfig.Verifier = tokenVerifier{}

	config := httpserver.DefaultRouterConfig()
	config.AuthMiddleware = middleware.Auth(authConfig)
	api.router = httpserver.NewRouter(echo.New(), config)

	userUpdater := userapp.NewUpdater(api.users)
	postMutator := postapp.NewMutator(api.posts)

	api.router.RegisterAll(
		httphandler.NewCatalogHandler(
			catalog.NewListBadgesUseCase(staticBadges{{ID: "b1", ImageURL: "https://cdn/b1.png", Cost: 300}}),
			catalog.NewListCategoriesUseCase(staticCategories{{ID: "c1", PostType: "running", Title: "Run"}}),
		),
		httphandler.NewUserHandler(
			userapp.NewRegisterUserUseCase(api.users),
			userapp.NewGetProfileUseCase(api.users),
			userapp.NewUpdateProfileUseCase(userUpdater),
			userapp.NewUpdatePhotoUseCase(userUpdater),
		),
		httphandler.NewCoinHandler(
			ledger.NewPurchaseBadgeUseCase(userUpdater, nil, nil),
			reward.NewDailyRewardUseCase(api.posts, userUpdater, reward.WithClock(fixedClock)),
			reward.DefaultDailyAmount,
		),
		httphandler.NewPostHandler(
			postapp.NewListPostsUseCase(api.posts),
			postapp.NewCreatePostUseCase(api.posts, fixedClock, nil),
			postapp.NewDeletePostUseCase(postMutator, nil),
			postapp.NewAttachMediaUseCase(postMutator),
			thread.NewService(postMutator, api.bus, thread.WithClock(fixedClock)),
		),
		httphandler.NewCommentHandler(
			thread.NewService(postMutator, api.bus, thread.WithClock(fixedClock)),
		),
		httphandler.NewMediaHandler(
			media.NewUploadUseCase(api.objects, nil),
			httphandler.WithDownloads(media.NewDownloadUseCase(api.objects)),
			httphandler.WithMaxUploadBytes(1<<20),
		),
	)
	return api
}

// do sends a JSON request; subject "" means no Authorization header
func (a *testAPI) do(method, path, subject string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if subject != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+subject)
	}
	return a.serve(req)
}

func (a *testAPI) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.Echo().ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.True(t, env.Success, rec.Body.String())
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, rec, nil)
	require.False(t, env.Success)
	require.NotNil(t, env.Error, rec.Body.String())
	return env.Error.Code
}
