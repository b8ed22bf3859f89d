package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"social-scheduler/internal/model"
	"social-scheduler/pkg/apierror"
)

const (
	defaultRequestTimeout = 30 * time.Second
	timeoutMessage        = "Request timed out"
)

// Timeout bounds REST handlers. It buffers the response, so it must not wrap
// the websocket upgrade. Expiry answers 503.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(model.Failure(apierror.CodeTimeout, timeoutMessage))
	return timeoutWith(timeout, string(body))
}

// FunctionTimeout bounds a function endpoint through its request context.
// Handlers stop at the deadline and fail with their own fixed status; one that
// returns without writing gets the flat timeout body under status.
func FunctionTimeout(timeout time.Duration, status int) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tracked := &writeTracker{ResponseWriter: w}
			next.ServeHTTP(tracked, r.WithContext(ctx))

			if !tracked.wrote && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				writeFailure(w, r, status, apierror.CodeTimeout, timeoutMessage)
			}
		})
	}
}

type writeTracker struct {
	http.ResponseWriter
	wrote bool
}

func (t *writeTracker) WriteHeader(status int) {
	t.wrote = true
	t.ResponseWriter.WriteHeader(status)
}

func (t *writeTracker) Write(b []byte) (int, error) {
	t.wrote = true
	return t.ResponseWriter.Write(b)
}

func timeoutWith(timeout time.Duration, body string) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, body)
		// The timeout body is written to the outer writer, so its type is preset here.
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			bounded.ServeHTTP(w, r)
		})
	}
}
