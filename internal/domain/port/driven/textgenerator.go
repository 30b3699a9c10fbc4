package driven

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse is returned when a provider answers with a body
	// that cannot be parsed or carries no usable content.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrProviderUnavailable is returned when a provider cannot be reached.
	ErrProviderUnavailable = errors.New("provider request failed")
)

// ProviderError is an explicit error payload returned by an upstream provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// TextGenerator defines the driven port for the generative-text provider.
type TextGenerator interface {
	// Generate sends prompt to the provider and returns the trimmed text of
	// the first candidate.
	Generate(ctx context.Context, prompt string) (string, error)
}
