package transport

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches 404 API responses.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized matches 401 API responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden matches 403 API responses.
	ErrForbidden = errors.New("forbidden")
)

// APIError is returned when the AgentSight API answers with a 4xx or 5xx
// status. API errors are never retried.
type APIError struct {
	StatusCode   int
	ResponseData map[string]any
	Message      string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap maps well-known status codes onto sentinel errors so callers can
// use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// NetworkError is returned after retries against the API have been
// exhausted without receiving an HTTP response.
type NetworkError struct {
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
