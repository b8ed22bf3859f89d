package middleware

import (
	"bufio"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	maxCapturedBody = 4 << 10
)

var errNoHijack = errors.New("response writer does not support hijacking")

// failureFields pulls code and message out of a failure body. REST bodies nest
// them under "error"; function bodies carry the message as a bare string.
func failureFields(raw []byte) []any {
	var probe struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &probe) != nil || len(probe.Error) == 0 {
		return nil
	}

	var message string
	if json.Unmarshal(probe.Error, &message) == nil {
		return []any{"error_message", message}
	}

	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if json.Unmarshal(probe.Error, &nested) != nil {
		return nil
	}
	fields := []any{"error_code", nested.Code, "error_message", nested.Message}
	if nested.Details != "" {
		fields = append(fields, "error_details", nested.Details)
	}
	return fields
}

// Logging assigns a request id and writes one access line per request.
// Failures are logged with the error carried in their body.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r)

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.written,
			"duration_ms", time.Since(started).Milliseconds(),
			"client_ip", r.RemoteAddr,
		}

		level := slog.LevelInfo
		if rec.status >= http.StatusBadRequest {
			level = slog.LevelWarn
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}
			attrs = append(attrs, failureFields(rec.failure)...)
		}
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		slog.Log(r.Context(), level, "request", attrs...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
	failure     []byte
}

func (rec *statusRecorder) WriteHeader(status int) {
	if rec.wroteHeader {
		return
	}
	rec.wroteHeader = true
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}
	if rec.status >= http.StatusBadRequest && len(rec.failure) < maxCapturedBody {
		room := maxCapturedBody - len(rec.failure)
		if len(b) < room {
			room = len(b)
		}
		rec.failure = append(rec.failure, b[:room]...)
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.written += n
	return n, err
}

// Hijack keeps websocket upgrades working behind the recorder.
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errNoHijack
	}
	return hijacker.Hijack()
}
