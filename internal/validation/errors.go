package validation

import (
	"fmt"
	"strings"

	"timesheet/internal/errors"
)

// ValidationErrorType represents the type of validation error
type ValidationErrorType string

const (
	ErrorTypeRequired      ValidationErrorType = "required"
	ErrorTypeInvalidFormat ValidationErrorType = "invalid_format"
	ErrorTypeInvalidLength ValidationErrorType = "invalid_length"
	ErrorTypeInvalidValue  ValidationErrorType = "invalid_value"
	ErrorTypeInvalidRange  ValidationErrorType = "invalid_range"
	ErrorTypeTooMany       ValidationErrorType = "too_many"
)

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string              `json:"field"`
	Type    ValidationErrorType `json:"type"`
	Message string              `json:"message"`
	Value   any                 `json:"-"`
}

// Error implements the error interface for FieldError
func (fe *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", fe.Field, fe.Message)
}

// ValidationError collects every field problem found in one payload
type ValidationError struct {
	Errors []FieldError
}

// NewValidationError creates an empty ValidationError
func NewValidationError() *ValidationError {
	return &ValidationError{Errors: make([]FieldError, 0)}
}

// Error implements the error interface for ValidationError
func (ve *ValidationError) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation error"
	case 1:
		return ve.Errors[0].Error()
	}
	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if the ValidationError has any errors
func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Fields returns the names of the failing fields in report order
func (ve *ValidationError) Fields() []string {
	fields := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		fields = append(fields, err.Field)
	}
	return fields
}

// AddError adds a new field error to the validation error
func (ve *ValidationError) AddError(field string, errorType ValidationErrorType, message string, value any) {
	ve.Errors = append(ve.Errors, FieldError{
		Field:   field,
		Type:    errorType,
		Message: message,
		Value:   value,
	})
}

// AddRequiredError adds a required field error
func (ve *ValidationError) AddRequiredError(field string) {
	ve.AddError(field, ErrorTypeRequired, fmt.Sprintf("%s is required", field), nil)
}

// AddInvalidFormatError adds an invalid format error
func (ve *ValidationError) AddInvalidFormatError(field string, value any, expectedFormat string) {
	message := fmt.Sprintf("%s has invalid format, expected: %s", field, expectedFormat)
	ve.AddError(field, ErrorTypeInvalidFormat, message, value)
}

// AddInvalidLengthError adds an error for a string over max characters
func (ve *ValidationError) AddInvalidLengthError(field string, value any, max int) {
	message := fmt.Sprintf("%s must be at most %d characters long", field, max)
	ve.AddError(field, ErrorTypeInvalidLength, message, value)
}

// AddInvalidValueError adds an invalid value error
func (ve *ValidationError) AddInvalidValueError(field string, value any, reason string) {
	message := fmt.Sprintf("%s has invalid value: %s", field, reason)
	ve.AddError(field, ErrorTypeInvalidValue, message, value)
}

// AddInvalidRangeError adds an invalid range error
func (ve *ValidationError) AddInvalidRangeError(field string, value any, reason string) {
	message := fmt.Sprintf("%s has invalid range: %s", field, reason)
	ve.AddError(field, ErrorTypeInvalidRange, message, value)
}

// AddTooManyError adds an error for a list longer than max
func (ve *ValidationError) AddTooManyError(field string, count, max int) {
	message := fmt.Sprintf("%s accepts at most %d items, got %d", field, max, count)
	ve.AddError(field, ErrorTypeTooMany, message, count)
}

// AppError converts the collected problems into an application validation
// error, keeping the failing fields as context.
func (ve *ValidationError) AppError() *errors.AppError {
	return errors.NewValidationError(ve.userMessage(), ve).WithContext("fields", ve.Fields())
}

// Err returns nil when nothing failed and the application error otherwise
func (ve *ValidationError) Err() error {
	if !ve.HasErrors() {
		return nil
	}
	return ve.AppError()
}

func (ve *ValidationError) userMessage() string {
	if len(ve.Errors) == 1 {
		return ve.Errors[0].Message
	}
	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}
