// Package apierror carries a client-facing error code, message and HTTP status
// through the service layer.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeQuotaExceeded  = "QUOTA_EXCEEDED"
	CodeRateLimited    = "RATE_LIMITED"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeUpstream       = "UPSTREAM_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
	CodeTimeout        = "REQUEST_TIMEOUT"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func BadRequest(message string, details string) *APIError {
	return New(CodeBadRequest, message, details, http.StatusBadRequest)
}

func Unauthorized(message string) *APIError {
	return New(CodeUnauthorized, message, "", http.StatusUnauthorized)
}

func Internal(message string) *APIError {
	return New(CodeInternal, message, "", http.StatusInternalServerError)
}

func Upstream(message string) *APIError {
	return New(CodeUpstream, message, "", http.StatusBadGateway)
}

// From unwraps err to an APIError. ok is false for any other error.
func From(err error) (apiErr *APIError, ok bool) {
	ok = errors.As(err, &apiErr)
	return apiErr, ok
}

// HasCode reports whether err is an APIError with the given code.
func HasCode(err error, code string) bool {
	apiErr, ok := From(err)
	return ok && apiErr.Code == code
}
