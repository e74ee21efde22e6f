package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"taskdesk/internal/exitcode"
	"taskdesk/internal/service"
)

func TestForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitcode.Success},
		{"unauthorized", &service.APIError{StatusCode: 401}, exitcode.AuthError},
		{"forbidden", &service.APIError{StatusCode: 403}, exitcode.AuthError},
		{"not found", service.ErrNotFound, exitcode.UserError},
		{"wrapped not found", fmt.Errorf("get: %w", &service.APIError{StatusCode: 404}), exitcode.UserError},
		{"validation", &service.APIError{StatusCode: 422, Detail: "bad"}, exitcode.UserError},
		{"server", &service.APIError{StatusCode: 500}, exitcode.BackendError},
		{"timeout", service.ErrTimeout, exitcode.BackendError},
		{"other", errors.New("connection refused"), exitcode.BackendError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitcode.ForError(tt.err); got != tt.want {
				t.Errorf("ForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
