package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		errors   []FieldError
		expected string
	}{
		{"No errors", []FieldError{}, "validation error"},
		{"Single error", []FieldError{{Field: "ids", Message: "ids is required"}}, "validation error for field 'ids': ids is required"},
		{"Multiple errors", []FieldError{
			{Field: "start", Message: "start is required"},
			{Field: "description", Message: "too long"},
		}, "multiple validation errors: validation error for field 'start': start is required; validation error for field 'description': too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			assert.Equal(t, tt.expected, ve.Error())
		})
	}
}

func TestValidationError_AddHelpers(t *testing.T) {
	ve := NewValidationError()
	assert.False(t, ve.HasErrors())

	ve.AddRequiredError("start")
	ve.AddInvalidFormatError("period", "2025-3", "YYYY-MM-H")
	ve.AddInvalidLengthError("description", "x", 500)
	ve.AddInvalidValueError("billable_rate", -1, "must not be negative")
	ve.AddInvalidRangeError("end", nil, "end before start")
	ve.AddTooManyError("ids", 600, 500)

	require.True(t, ve.HasErrors())
	assert.Equal(t, []string{"start", "period", "description", "billable_rate", "end", "ids"}, ve.Fields())

	types := make([]ValidationErrorType, len(ve.Errors))
	for i, fe := range ve.Errors {
		types[i] = fe.Type
	}
	assert.Equal(t, []ValidationErrorType{
		ErrorTypeRequired, ErrorTypeInvalidFormat, ErrorTypeInvalidLength,
		ErrorTypeInvalidValue, ErrorTypeInvalidRange, ErrorTypeTooMany,
	}, types)
	assert.Equal(t, "ids accepts at most 500 items, got 600", ve.Errors[5].Message)
}

func TestValidationError_Err(t *testing.T) {
	assert.NoError(t, NewValidationError().Err())

	ve := NewValidationError()
	ve.AddRequiredError("start")
	err := ve.Err()
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	assert.Equal(t, "start is required", errors.GetUserMessage(err))

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	fields, ok := appErr.GetContext("fields")
	require.True(t, ok)
	assert.Equal(t, []string{"start"}, fields)
}
