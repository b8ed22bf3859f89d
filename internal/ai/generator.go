// Package ai talks to the hosted text-generation providers.
package ai

import (
	"context"
	"errors"

	"social-scheduler/internal/content"
)

const (
	maxOutputTokens = 500
	temperature     = 0.7
)

var (
	ErrUpstream    = errors.New("generation provider request failed")
	ErrEmptyOutput = errors.New("generation provider returned no content")
)

// Generator turns an assembled prompt into post copy. Calls are not retried.
type Generator interface {
	Generate(ctx context.Context, prompt content.Prompt) (string, error)
}
