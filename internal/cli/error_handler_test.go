package cli

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "timesheet/internal/errors"
	"timesheet/internal/validation"
)

func TestErrorHandler_Handle(t *testing.T) {
	eh := NewErrorHandler()

	fieldErr := validation.NewValidationError()
	fieldErr.AddRequiredError("ids")

	tests := []struct {
		name      string
		operation string
		err       error
		expected  string
	}{
		{
			name:      "Validation error",
			operation: "transition",
			err:       apperrors.NewValidationError("invalid payload", nil),
			expected:  "failed to transition: invalid payload",
		},
		{
			name:      "Field validation error",
			operation: "transition",
			err:       fieldErr,
			expected:  "failed to transition: validation error for field 'ids': ids is required",
		},
		{
			name:      "Not found error",
			operation: "remind",
			err:       apperrors.NewNotFoundError("time entries", "abc"),
			expected:  "failed to remind: time entries not found: abc",
		},
		{
			name:      "Conflict error",
			operation: "transition",
			err:       apperrors.NewConflictError("submit from current state", []string{"abc", "def"}),
			expected:  "failed to transition: submit from current state not allowed for: abc, def",
		},
		{
			name:      "Database error",
			operation: "export",
			err:       apperrors.NewDatabaseError("query", stderrors.New("timeout")),
			expected:  "failed to export: A database error occurred. Please try again.",
		},
		{
			name:      "Regular error",
			operation: "export",
			err:       stderrors.New("regular error"),
			expected:  "failed to export: regular error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := eh.Handle(tt.operation, tt.err)

			assert.EqualError(t, result, tt.expected)
			assert.ErrorIs(t, result, tt.err)
		})
	}
}

func TestErrorHandler_HandleNil(t *testing.T) {
	assert.NoError(t, NewErrorHandler().Handle("anything", nil))
}

func TestErrorHandler_ExitCode(t *testing.T) {
	eh := NewErrorHandler()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", apperrors.NewValidationError("bad", nil), 2},
		{"invalid input", apperrors.NewInvalidInputError("period", "x", "bad"), 2},
		{"field validation", validation.NewValidationError(), 2},
		{"permission", apperrors.NewPermissionError("approve", "time entries"), 3},
		{"not found", apperrors.NewNotFoundError("member", "x"), 4},
		{"conflict", apperrors.NewConflictError("approve", []string{"x"}), 5},
		{"wrapped permission", eh.Handle("board", apperrors.NewPermissionError("board", "time entries")), 3},
		{"database", apperrors.NewDatabaseError("query", stderrors.New("boom")), 1},
		{"plain", stderrors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eh.ExitCode(tt.err))
		})
	}
}
