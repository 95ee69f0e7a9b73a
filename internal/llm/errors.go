package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited indicates the provider rejected the call for rate or quota reasons.
	ErrRateLimited = errors.New("LLM quota or rate limit exceeded")
	// ErrUnauthorized indicates the provider rejected the API key.
	ErrUnauthorized = errors.New("invalid LLM API key")
	// ErrNotConfigured indicates no API key was supplied.
	ErrNotConfigured = errors.New("LLM API key not configured")
	// ErrEmptyResponse indicates the provider returned no text.
	ErrEmptyResponse = errors.New("no completion returned")
)

// APIError is a non-success response from a provider.
type APIError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s API error (status %d, code %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap classifies the error as ErrRateLimited or ErrUnauthorized where possible.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests,
		e.Code == "insufficient_quota",
		e.Code == "rate_limit_exceeded":
		return ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized,
		e.Code == "invalid_api_key":
		return ErrUnauthorized
	default:
		return nil
	}
}
