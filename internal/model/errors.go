package model

import "errors"

var (
	// Identity related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Profile related errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrQuotaExceeded   = errors.New("quota exceeded")

	// Post related errors
	ErrPostNotFound      = errors.New("post not found")
	ErrInvalidTransition = errors.New("invalid post status transition")

	// Social account related errors
	ErrAccountNotFound = errors.New("account not found")
	ErrSecretNotFound  = errors.New("secret not found")

	// Session related errors
	ErrSessionNotFound = errors.New("session not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
