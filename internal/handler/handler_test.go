package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
	"social-scheduler/internal/session"
	"social-scheduler/pkg/apierror"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*model.AuthClaims, error) {
	if token != "good-token" {
		return nil, errors.New("signature is invalid")
	}
	return &model.AuthClaims{UserID: "user-1", SessionID: "sess-1", Token: token}, nil
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, userID string, req model.GenerateContentRequest) (model.GenerationResult, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(model.GenerationResult), args.Error(1)
}

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Handle(ctx context.Context, userID string, req model.SocialAuthRequest) (any, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0), args.Error(1)
}

func withClaims(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithClaims(r.Context(), &model.AuthClaims{UserID: "user-1", SessionID: "sess-1", Token: "good-token"}))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFunctionHandler_GenerateContent(t *testing.T) {
	t.Parallel()

	t.Run("success body is bare", func(t *testing.T) {
		t.Parallel()
		generator := new(mockGenerator)
		h := NewFunctionHandler(stubValidator{}, generator, new(mockBroker))
		limit := 5
		generator.On("Generate", mock.Anything, "user-1", model.GenerateContentRequest{Prompt: "tips", Platform: "twitter", Tone: "casual"}).
			Return(model.GenerationResult{
				Content:        "hello",
				Hashtags:       []string{"#trending"},
				CharacterCount: 5,
				CharacterLimit: 280,
				Usage:          model.Usage{Used: 1, Limit: &limit, Tier: "free"},
			}, nil)

		req := httptest.NewRequest(http.MethodPost, "/functions/v1/generate-ai-content", strings.NewReader(`{"prompt":"tips","platform":"twitter","tone":"casual"}`))
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		h.GenerateContent(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"content":"hello","hashtags":["#trending"],"characterCount":5,"characterLimit":280,"usage":{"used":1,"limit":5,"tier":"free"}}`, rec.Body.String())
	})

	cases := []struct {
		name    string
		header  string
		body    string
		err     error
		message string
	}{
		{name: "missing header", body: `{}`, message: "No authorization header provided"},
		{name: "invalid token", header: "Bearer forged", body: `{}`, message: "Invalid authentication token"},
		{name: "malformed header", header: "Token good-token", body: `{}`, message: "Invalid authentication token"},
		{name: "invalid json", header: "Bearer good-token", body: `{`, message: "invalid JSON body"},
		{
			name:    "service error is flattened",
			header:  "Bearer good-token",
			body:    `{"prompt":"x","platform":"twitter","tone":"casual"}`,
			err:     apierror.New(apierror.CodeQuotaExceeded, "Usage limit reached. Upgrade your plan to generate more content.", "", http.StatusTooManyRequests),
			message: "Usage limit reached. Upgrade your plan to generate more content.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			generator := new(mockGenerator)
			if tc.err != nil {
				generator.On("Generate", mock.Anything, "user-1", mock.Anything).Return(model.GenerationResult{}, tc.err)
			}
			h := NewFunctionHandler(stubValidator{}, generator, new(mockBroker))

			req := httptest.NewRequest(http.MethodPost, "/functions/v1/generate-ai-content", strings.NewReader(tc.body))
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.GenerateContent(rec, req)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, map[string]any{"error": tc.message}, decodeBody(t, rec))
		})
	}
}

func TestFunctionHandler_SocialMediaAuth(t *testing.T) {
	t.Parallel()

	t.Run("passes the action through", func(t *testing.T) {
		t.Parallel()
		broker := new(mockBroker)
		h := NewFunctionHandler(stubValidator{}, new(mockGenerator), broker)
		broker.On("Handle", mock.Anything, "user-1", model.SocialAuthRequest{Action: "get_account_status", Platform: "twitter"}).
			Return(map[string]any{"account": nil}, nil)

		req := httptest.NewRequest(http.MethodPost, "/functions/v1/social-media-auth", strings.NewReader(`{"action":"get_account_status","platform":"twitter"}`))
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		h.SocialMediaAuth(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"account":null}`, rec.Body.String())
	})

	t.Run("errors are 400", func(t *testing.T) {
		t.Parallel()
		broker := new(mockBroker)
		h := NewFunctionHandler(stubValidator{}, new(mockGenerator), broker)
		broker.On("Handle", mock.Anything, "user-1", mock.Anything).
			Return(nil, apierror.BadRequest("Invalid action", ""))

		req := httptest.NewRequest(http.MethodPost, "/functions/v1/social-media-auth", strings.NewReader(`{"action":"nope"}`))
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		h.SocialMediaAuth(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid action"}`, rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()
		h := NewFunctionHandler(stubValidator{}, new(mockGenerator), new(mockBroker))

		rec := httptest.NewRecorder()
		h.SocialMediaAuth(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/social-media-auth", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"No authorization header"}`, rec.Body.String())
	})
}

type stubPosts struct {
	postManager
	scheduled *time.Time
}

func (s *stubPosts) Schedule(_ context.Context, userID string, postID string, at *time.Time) (model.Post, error) {
	if postID == "missing" {
		return model.Post{}, model.ErrPostNotFound
	}
	s.scheduled = at
	return model.Post{ID: postID, UserID: userID, Status: model.PostScheduled, ScheduledTime: at}, nil
}

func (s *stubPosts) Calendar(_ context.Context, _ string, year int, month int) (model.CalendarMonth, error) {
	return model.CalendarMonth{Year: year, Month: month}, nil
}

func (s *stubPosts) CurrentMonth() (int, int) {
	return 2026, 10
}

func TestPostHandler(t *testing.T) {
	t.Parallel()

	posts := &stubPosts{}
	h := NewPostHandler(posts)
	r := chi.NewRouter()
	r.Put("/posts/{post_id}/schedule", h.Schedule)
	r.Get("/calendar", h.Calendar)

	t.Run("schedule", func(t *testing.T) {
		req := withClaims(httptest.NewRequest(http.MethodPut, "/posts/p-1/schedule", strings.NewReader(`{"scheduled_time":"2026-11-02T10:00:00Z"}`)))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		require.NotNil(t, posts.scheduled)
		assert.Equal(t, time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC), posts.scheduled.UTC())
	})

	t.Run("unknown post maps to 404", func(t *testing.T) {
		req := withClaims(httptest.NewRequest(http.MethodPut, "/posts/missing/schedule", strings.NewReader(`{"scheduled_time":"2026-11-02T10:00:00Z"}`)))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
	})

	t.Run("calendar defaults to the current month", func(t *testing.T) {
		req := withClaims(httptest.NewRequest(http.MethodGet, "/calendar?month=3", nil))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, float64(2026), data["year"])
		assert.Equal(t, float64(3), data["month"])
	})

	t.Run("missing claims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calendar", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type countingSignOuter struct {
	calls int
	err   error
}

func (c *countingSignOuter) SignOut(context.Context, string) error {
	c.calls++
	return c.err
}

func newSessionFixture(signOutErr error) (*SessionHandler, *session.StubClock, *countingSignOuter) {
	clock := session.NewStubClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	signOuter := &countingSignOuter{err: signOutErr}
	registry := session.NewRegistry(session.Deps{Clock: clock, SignOuter: signOuter})
	return NewSessionHandler(registry), clock, signOuter
}

func TestSessionHandler(t *testing.T) {
	t.Parallel()

	t.Run("status then warning", func(t *testing.T) {
		t.Parallel()
		h, clock, _ := newSessionFixture(nil)

		rec := httptest.NewRecorder()
		h.Status(rec, withClaims(httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)))
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, "active", data["state"])
		assert.Equal(t, "30:00", data["time_remaining"])

		clock.Advance(26 * time.Minute)
		rec = httptest.NewRecorder()
		h.Status(rec, withClaims(httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)))
		data = decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, "warning", data["state"])
		assert.Equal(t, true, data["show_warning"])
	})

	t.Run("activity rejects unknown signals", func(t *testing.T) {
		t.Parallel()
		h, _, _ := newSessionFixture(nil)

		rec := httptest.NewRecorder()
		h.Activity(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/session/activity", strings.NewReader(`{"signal":"resize"}`))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("extend after expiry", func(t *testing.T) {
		t.Parallel()
		h, clock, signOuter := newSessionFixture(nil)

		rec := httptest.NewRecorder()
		h.Status(rec, withClaims(httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)))
		clock.Advance(31 * time.Minute)

		rec = httptest.NewRecorder()
		h.Extend(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/session/extend", nil)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "SESSION_EXPIRED")
		assert.Equal(t, 1, signOuter.calls)
	})

	t.Run("declined logout keeps the session", func(t *testing.T) {
		t.Parallel()
		h, _, signOuter := newSessionFixture(nil)

		rec := httptest.NewRecorder()
		h.Logout(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/session/logout", strings.NewReader(`{"confirmed":false}`))))
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, false, data["logged_out"])
		assert.Zero(t, signOuter.calls)
	})

	t.Run("logout failure", func(t *testing.T) {
		t.Parallel()
		h, _, _ := newSessionFixture(errors.New("provider down"))

		rec := httptest.NewRecorder()
		h.Logout(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/session/logout", nil)))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "There was an error logging out. Please try again.")
	})

	t.Run("preferences", func(t *testing.T) {
		t.Parallel()
		h, _, _ := newSessionFixture(nil)

		rec := httptest.NewRecorder()
		h.PutPreferences(rec, withClaims(httptest.NewRequest(http.MethodPut, "/api/v1/session/preferences", strings.NewReader(`{"values":{"lastRoute":"/calendar"}}`))))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.PutPreferences(rec, withClaims(httptest.NewRequest(http.MethodPut, "/api/v1/session/preferences", strings.NewReader(`{"values":{"theme":"dark"}}`))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		h.GetPreferences(rec, withClaims(httptest.NewRequest(http.MethodGet, "/api/v1/session/preferences", nil)))
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, map[string]any{"lastRoute": "/calendar"}, data["values"])
	})
}

func TestWriteError_Sentinels(t *testing.T) {
	t.Parallel()

	cases := map[error]int{
		model.ErrPostNotFound:      http.StatusNotFound,
		model.ErrInvalidTransition: http.StatusConflict,
		model.ErrQuotaExceeded:     http.StatusTooManyRequests,
		session.ErrExpired:         http.StatusUnauthorized,
		errors.New("boom"):         http.StatusInternalServerError,
	}

	for err, status := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, err)
		assert.Equal(t, status, rec.Code, err.Error())
		assert.Equal(t, false, decodeBody(t, rec)["success"])
	}
}

func TestDocsHandler(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/openapi.yaml"
	require.NoError(t, os.WriteFile(path, []byte("openapi: 3.0.3\n"), 0o600))
	h := NewDocsHandler(path)

	rec := httptest.NewRecorder()
	h.OpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "openapi: 3.0.3\n", rec.Body.String())

	// Served from memory after the first read.
	require.NoError(t, os.Remove(path))
	rec = httptest.NewRecorder()
	h.OpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewDocsHandler("").OpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.SwaggerUI(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))
	assert.Contains(t, rec.Body.String(), "SwaggerUIBundle")
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
