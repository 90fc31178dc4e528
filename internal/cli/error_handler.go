package cli

import (
	stderrors "errors"
	"fmt"

	"timesheet/internal/errors"
	"timesheet/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// commandError carries a user-facing message while keeping the cause
// reachable for errors.As
type commandError struct {
	msg   string
	cause error
}

func (e *commandError) Error() string { return e.msg }
func (e *commandError) Unwrap() error { return e.cause }

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}

	var validationErr *validation.ValidationError
	if stderrors.As(err, &validationErr) {
		return &commandError{msg: fmt.Sprintf("failed to %s: %s", operation, validationErr.Error()), cause: err}
	}

	if errors.IsAppError(err) {
		return &commandError{msg: fmt.Sprintf("failed to %s: %s", operation, errors.GetUserMessage(err)), cause: err}
	}

	// Fallback for unknown errors
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsPermissionError checks if an error is a permission error
func (eh *ErrorHandler) IsPermissionError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypePermission)
}

// ExitCode maps an error onto a process exit status
func (eh *ErrorHandler) ExitCode(err error) int {
	var validationErr *validation.ValidationError
	switch {
	case err == nil:
		return 0
	case stderrors.As(err, &validationErr):
		return 2
	case errors.IsErrorType(err, errors.ErrorTypeValidation), errors.IsErrorType(err, errors.ErrorTypeInvalidInput):
		return 2
	case eh.IsPermissionError(err):
		return 3
	case eh.IsNotFoundError(err):
		return 4
	case errors.IsErrorType(err, errors.ErrorTypeConflict):
		return 5
	default:
		return 1
	}
}

// errUsage reports a command called with the wrong arguments
func errUsage(usage string) error {
	return errors.NewInvalidInputError("arguments", "", usage)
}
