// Package exitcode defines exit codes for the CLI and maps errors to them.
package exitcode

import (
	"errors"

	"taskdesk/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid form, unknown task).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// ForError returns the exit code for a failed backend call.
// Not-found and validation rejections from the server are the user's to fix.
func ForError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrUnauthorized):
		return AuthError
	case errors.Is(err, service.ErrNotFound):
		return UserError
	}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 422 {
		return UserError
	}
	return BackendError
}
