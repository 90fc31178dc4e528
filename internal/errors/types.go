package errors

import (
	"fmt"
	"net/http"
)

// ErrorType is the category of an error. It decides the HTTP status and the
// CLI exit code the error surfaces with.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypePermission
	// ErrorTypeConflict marks entries in the wrong approval state or rows
	// changed by a concurrent transition
	ErrorTypeConflict
)

type typeInfo struct {
	name   string
	status int
}

var typeTable = map[ErrorType]typeInfo{
	ErrorTypeValidation:   {"validation", http.StatusUnprocessableEntity},
	ErrorTypeNotFound:     {"not_found", http.StatusNotFound},
	ErrorTypeDatabase:     {"database", http.StatusInternalServerError},
	ErrorTypeInvalidInput: {"invalid_input", http.StatusUnprocessableEntity},
	ErrorTypeTimeout:      {"timeout", http.StatusGatewayTimeout},
	ErrorTypePermission:   {"permission", http.StatusForbidden},
	ErrorTypeConflict:     {"conflict", http.StatusConflict},
}

// String returns the snake_case name used in logs and error bodies
func (et ErrorType) String() string {
	if info, ok := typeTable[et]; ok {
		return info.name
	}
	return "unknown"
}

// Status returns the HTTP status for the type, 500 when unknown
func (et ErrorType) Status() int {
	if info, ok := typeTable[et]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// AppError is a categorized error. Context carries the offending values, such
// as the entry ids a batch was rejected for.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]any
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same type and code
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && e.Type == other.Type && e.Code == other.Code
}

// IsType reports whether the error is of errorType
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext attaches a value under key and returns the error for chaining
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// GetContext returns the value stored under key
func (e *AppError) GetContext(key string) (any, bool) {
	value, ok := e.Context[key]
	return value, ok
}
