package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"social-scheduler/internal/model"
)

const functionPrefix = "/functions/v1"

func isFunctionPath(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.URL.Path), functionPrefix)
}

// writeFailure answers in the shape the route's clients expect: a flat
// {"error"} body under /functions/v1 and the envelope everywhere else.
func writeFailure(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if isFunctionPath(r) {
		_ = json.NewEncoder(w).Encode(model.FunctionError{Error: message})
		return
	}
	_ = json.NewEncoder(w).Encode(model.Failure(code, message))
}
