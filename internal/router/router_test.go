package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-scheduler/internal/config"
	"social-scheduler/internal/handler"
	"social-scheduler/internal/middleware"
	"social-scheduler/internal/model"
)

type rejectingValidator struct{}

func (rejectingValidator) ValidateToken(string) (*model.AuthClaims, error) {
	return nil, errors.New("invalid token")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout:       time.Second,
		CORSOrigins:          []string{"*"},
		RateLimitRPM:         1,
		FunctionRateLimitRPM: 1,
	}
	validator := rejectingValidator{}

	return New(cfg, middleware.NewAuthMiddleware(validator), Handlers{
		Function: handler.NewFunctionHandler(validator, nil, nil),
	})
}

func send(t *testing.T, h http.Handler, method string, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RateLimitedFunctionKeepsCORS(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	first := send(t, h, http.MethodPost, "/functions/v1/generate-ai-content")
	require.Equal(t, http.StatusInternalServerError, first.Code)
	assert.Equal(t, "*", first.Header().Get("Access-Control-Allow-Origin"))

	limited := send(t, h, http.MethodPost, "/functions/v1/generate-ai-content")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "*", limited.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", limited.Header().Get("Access-Control-Allow-Headers"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, limited.Body.String())
}

func TestRouter_RateLimitedRESTKeepsCORS(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)

	first := send(t, h, http.MethodGet, "/api/v1/profile")
	require.Equal(t, http.StatusUnauthorized, first.Code)
	assert.Equal(t, "*", first.Header().Get("Access-Control-Allow-Origin"))

	limited := send(t, h, http.MethodGet, "/api/v1/profile")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "*", limited.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, limited.Body.String(), "RATE_LIMITED")
}

func TestRouter_HealthIsNotLimited(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t)
	for i := 0; i < 3; i++ {
		rec := send(t, h, http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	}
}
