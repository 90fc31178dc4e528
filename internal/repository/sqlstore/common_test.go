package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"timesheet/internal/errors"
)

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	rowsErr      error
}

func (m *mockResult) LastInsertId() (int64, error) { return 0, nil }

func (m *mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.rowsErr }

func TestHandleDatabaseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType errors.ErrorType
	}{
		{name: "plain failure", err: stderrors.New("connection refused"), wantType: errors.ErrorTypeDatabase},
		{name: "deadline", err: context.DeadlineExceeded, wantType: errors.ErrorTypeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleDatabaseError("test operation", tt.err)
			assert.True(t, errors.IsErrorType(result, tt.wantType))
			assert.Contains(t, result.Error(), "test operation")
		})
	}
}

func TestHandleNoRowsError(t *testing.T) {
	err := HandleNoRowsError(sql.ErrNoRows, "time entry", "abc")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	other := stderrors.New("boom")
	assert.Equal(t, other, HandleNoRowsError(other, "time entry", "abc"))
}

func TestValidateRowsAffected(t *testing.T) {
	tests := []struct {
		name     string
		result   sql.Result
		wantType errors.ErrorType
		wantErr  bool
	}{
		{name: "one row", result: &mockResult{rowsAffected: 1}},
		{name: "no rows", result: &mockResult{}, wantErr: true, wantType: errors.ErrorTypeNotFound},
		{name: "driver error", result: &mockResult{rowsErr: stderrors.New("unsupported")}, wantErr: true, wantType: errors.ErrorTypeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRowsAffected(tt.result, "team", "t1")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsErrorType(err, tt.wantType))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
