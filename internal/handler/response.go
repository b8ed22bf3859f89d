package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"social-scheduler/internal/model"
	"social-scheduler/internal/session"
	"social-scheduler/pkg/apierror"
)

// sentinels maps domain errors that reach a handler unwrapped by the services.
var sentinels = []struct {
	err  error
	code string
	msg  string
	http int
}{
	{model.ErrUnauthorized, apierror.CodeUnauthorized, "Authentication required", http.StatusUnauthorized},
	{model.ErrForbidden, "FORBIDDEN", "Access denied", http.StatusForbidden},
	{model.ErrProfileNotFound, apierror.CodeNotFound, "Profile not found", http.StatusNotFound},
	{model.ErrPostNotFound, apierror.CodeNotFound, "Post not found", http.StatusNotFound},
	{model.ErrAccountNotFound, apierror.CodeNotFound, "Account not found", http.StatusNotFound},
	{model.ErrInvalidTransition, apierror.CodeConflict, "Invalid post status transition", http.StatusConflict},
	{model.ErrQuotaExceeded, apierror.CodeQuotaExceeded, "Usage limit reached. Upgrade your plan to generate more content.", http.StatusTooManyRequests},
	{model.ErrSessionNotFound, apierror.CodeSessionExpired, "Session expired", http.StatusUnauthorized},
	{session.ErrExpired, apierror.CodeSessionExpired, "Session expired", http.StatusUnauthorized},
	{model.ErrInvalidInput, apierror.CodeBadRequest, "Invalid input", http.StatusBadRequest},
}

// resolve turns any error into an APIError. Unknown errors become a logged 500.
func resolve(err error) *apierror.APIError {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return apierror.New(s.code, s.msg, "", s.http)
		}
	}

	slog.Error("unclassified handler error", "error", err)
	return apierror.Internal("Unexpected server error")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.ListMeta) {
	writeJSON(w, status, model.Response{Success: true, Data: data, Meta: meta})
}

func writeError(w http.ResponseWriter, err error) {
	apiErr := resolve(err)
	writeJSON(w, apiErr.HTTPStatus, model.Response{Error: &model.ErrorBody{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}})
}

// writeFunctionJSON writes a bare body, the shape edge-function clients expect.
func writeFunctionJSON(w http.ResponseWriter, status int, body any) {
	writeJSON(w, status, body)
}

// writeFunctionError flattens err to {"error": message} under the endpoint's fixed status.
func writeFunctionError(w http.ResponseWriter, status int, err error) {
	writeFunctionJSON(w, status, model.FunctionError{Error: resolve(err).Message})
}

func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apierror.BadRequest("invalid JSON body", "")
	}
	return nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
