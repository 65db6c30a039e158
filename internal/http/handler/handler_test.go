package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mediaapi/internal/config"
	"mediaapi/internal/http/middleware"
	"mediaapi/internal/model"
	repoMocks "mediaapi/internal/repository/mocks"
	"mediaapi/internal/service"
	serviceMocks "mediaapi/internal/service/mocks"
)

type testDeps struct {
	links   *serviceMocks.MockLinkService
	catalog *serviceMocks.MockCatalogService
	repo    *repoMocks.MockCatalogRepository
	logs    *observer.ObservedLogs
}

func newTestApp(t *testing.T) (*fiber.App, testDeps) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	d := testDeps{
		links:   new(serviceMocks.MockLinkService),
		catalog: new(serviceMocks.MockCatalogService),
		repo:    new(repoMocks.MockCatalogRepository),
		logs:    logs,
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, Dependencies{
		Links:   d.links,
		Catalog: d.catalog,
		Health:  d.repo,
		Log:     log,
	})
	return app, d
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestIssueLink(t *testing.T) {
	app, d := newTestApp(t)

	t.Run("success", func(t *testing.T) {
		d.links.On("Issue", mock.Anything, model.LinkRequest{Key: "videos/a.mp4", TTL: "600"}).
			Return(&model.SignedLink{URL: "https://signed", ExpiresIn: 600, Key: "videos/a.mp4"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/links?key=videos%2Fa.mp4&ttl=600", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		body := decode[model.SignedLink](t, resp)
		assert.Equal(t, model.SignedLink{URL: "https://signed", ExpiresIn: 600, Key: "videos/a.mp4"}, body)
	})

	t.Run("legacy path", func(t *testing.T) {
		d.links.On("Issue", mock.Anything, model.LinkRequest{Key: "a.mp4"}).
			Return(&model.SignedLink{URL: "u", ExpiresIn: 3600, Key: "a.mp4"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/getPlayableLink?key=a.mp4", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("no such key", func(t *testing.T) {
		d.links.On("Issue", mock.Anything, model.LinkRequest{Key: "missing.mp4"}).
			Return(nil, &service.NoSuchKeyError{Key: "missing.mp4", Tried: []string{"missing.mp4", "mybucket/missing.mp4"}}).Once()

		req := httptest.NewRequest(http.MethodGet, "/links?key=missing.mp4", nil)
		req.Header.Set(middleware.RequestIDHeader, "rid-404")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decode[errorPayload](t, resp)
		assert.Equal(t, "NoSuchKey", body.Error)
		assert.Equal(t, "The specified key does not exist.", body.Message)
		assert.Equal(t, []string{"missing.mp4", "mybucket/missing.mp4"}, body.Tried)
		assert.Equal(t, "rid-404", body.RequestID)
	})

	t.Run("validation error", func(t *testing.T) {
		d.links.On("Issue", mock.Anything, model.LinkRequest{Key: "a.mp4", TTL: "-5"}).
			Return(nil, &service.ValidationError{Message: "Invalid 'ttl' parameter"}).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/links?key=a.mp4&ttl=-5", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[errorPayload](t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error)
		assert.Equal(t, "Invalid 'ttl' parameter", body.Message)
		assert.Nil(t, body.Tried)
	})

	t.Run("configuration error hides detail", func(t *testing.T) {
		cause := &config.MissingSettingError{Setting: "STORAGE_BUCKET"}
		d.links.On("Issue", mock.Anything, model.LinkRequest{Key: "cfg.mp4"}).
			Return(nil, &service.ConfigurationError{Err: cause}).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/links?key=cfg.mp4", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(raw), `"error":"INTERNAL_ERROR"`)
		assert.NotContains(t, string(raw), "STORAGE_BUCKET")

		logged := d.logs.FilterMessage("service not configured").All()
		require.Len(t, logged, 1)
		assert.Equal(t, zapcore.ErrorLevel, logged[0].Level)
	})

	t.Run("options and head", func(t *testing.T) {
		for _, method := range []string{http.MethodOptions, http.MethodHead} {
			resp, err := app.Test(httptest.NewRequest(method, "/links", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode, method)
		}
	})

	d.links.AssertExpectations(t)
}

func TestCatalogRoutes(t *testing.T) {
	app, d := newTestApp(t)

	t.Run("list reels", func(t *testing.T) {
		d.catalog.On("ListReels", mock.Anything, "travel").
			Return([]model.Reel{{ID: "r-1", Title: "Sunset", Categories: []string{"travel"}}}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/catalog/reels?category=travel", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string][]model.Reel](t, resp)
		require.Len(t, body["items"], 1)
		assert.Equal(t, "r-1", body["items"][0].ID)
	})

	t.Run("legacy stories list key", func(t *testing.T) {
		d.catalog.On("ListStories", mock.Anything, "").
			Return([]model.Story{{ID: "s-1"}}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/stories", nil))
		require.NoError(t, err)

		body := decode[map[string][]model.Story](t, resp)
		assert.Len(t, body["stories"], 1)
	})

	t.Run("unknown kind", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/catalog/podcasts", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decode[errorPayload](t, resp).Error)
	})

	t.Run("create reel", func(t *testing.T) {
		want := model.CreateReelRequest{Title: "Sunset", Categories: []string{"travel"}, Thumbnail: "t.jpg", Video: "v.mp4"}
		d.catalog.On("CreateReel", mock.Anything, want).
			Return(&model.Reel{ID: "r-9", Title: "Sunset"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/catalog/reels",
			strings.NewReader(`{"title":"Sunset","categories":["travel"],"thumbnail":"t.jpg","video":"v.mp4"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decode[map[string]model.Reel](t, resp)
		assert.Equal(t, "r-9", body["item"].ID)
	})

	t.Run("legacy create story item key", func(t *testing.T) {
		d.catalog.On("CreateStory", mock.Anything, mock.MatchedBy(func(r model.CreateStoryRequest) bool {
			return r.Title == "Launch" && string(r.Story) == `{"slides":[1]}`
		})).Return(&model.Story{ID: "s-9", Title: "Launch"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/stories", strings.NewReader(`{"title":"Launch","story":{"slides":[1]}}`))
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decode[map[string]model.Story](t, resp)
		assert.Equal(t, "s-9", body["story"].ID)
	})

	t.Run("missing thumbnail", func(t *testing.T) {
		d.catalog.On("CreateReel", mock.Anything, model.CreateReelRequest{Title: "x", Video: "v"}).
			Return(nil, &service.ValidationError{Message: "Thumbnail is required"}).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/reels", strings.NewReader(`{"title":"x","video":"v"}`))
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode[errorPayload](t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error)
		assert.Equal(t, "Thumbnail is required", body.Message)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/catalog/stories", strings.NewReader(`{"title":`))
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid JSON body", decode[errorPayload](t, resp).Message)
	})

	t.Run("mistyped fields", func(t *testing.T) {
		for _, body := range []string{
			`{"title":"Sunset","categories":"travel","thumbnail":"t.jpg","video":"v.mp4"}`,
			`{"title":42,"thumbnail":"t.jpg","video":"v.mp4"}`,
		} {
			req := httptest.NewRequest(http.MethodPost, "/catalog/reels", strings.NewReader(body))
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
			assert.Equal(t, "Invalid JSON body", decode[errorPayload](t, resp).Message, body)
		}
	})

	t.Run("service failure", func(t *testing.T) {
		d.catalog.On("ListReels", mock.Anything, "boom").Return(nil, errors.New("list reels: connection reset")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/catalog/reels?category=boom", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decode[errorPayload](t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error)
		assert.Equal(t, "internal server error", body.Message)
	})

	t.Run("preflight", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/catalog/reels", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	d.catalog.AssertExpectations(t)
}

func TestHealthCheck(t *testing.T) {
	app, d := newTestApp(t)

	t.Run("healthy", func(t *testing.T) {
		d.repo.On("Ping", mock.Anything).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "healthy", decode[map[string]string](t, resp)["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		d.repo.On("Ping", mock.Anything).Return(errors.New("db error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decode[errorPayload](t, resp).Error)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPages(t *testing.T) {
	app, _ := newTestApp(t)

	t.Run("index", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		raw, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(raw), "/links?key=path/to/file.mp4&amp;ttl=600")
	})

	t.Run("test page escapes prefilled key", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, `/test?key=%22%3E%3Cscript%3Ealert(1)%3C%2Fscript%3E`, nil))
		require.NoError(t, err)

		raw, _ := io.ReadAll(resp.Body)
		page := string(raw)
		assert.NotContains(t, page, `"><script>alert(1)</script>`)
		assert.Contains(t, page, `value="1200"`)
		assert.Contains(t, page, "fetchUrl();\n  </script>")
	})

	t.Run("test page without key does not auto-run", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)

		raw, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(raw), "fetchUrl();\n  </script>")
	})
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set(middleware.RequestIDHeader, "rid-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[errorPayload](t, resp)
	assert.Equal(t, "NOT_FOUND", body.Error)
	assert.Equal(t, "rid-1", body.RequestID)
}

func TestErrorHandler_MethodNotAllowed(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/links", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decode[errorPayload](t, resp).Error)
}
