package service

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericErrorMessage is shown when an error carries no usable text.
const GenericErrorMessage = "An unknown error occurred"

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrUnauthorized is returned when the backend rejects the credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTimeout is returned when a request exceeds the configured timeout.
	ErrTimeout = errors.New("request timed out")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	// Detail is the server's human-readable message, if any.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is match APIErrors against the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// ErrorMessage converts an error into the single string shown to the user.
// Prefers the API detail, then the error's own message, then a generic text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}
