package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{
			name:     "unknown field error type",
			errType:  ErrTypeUnknownField,
			expected: "UNKNOWN_FIELD",
		},
		{
			name:     "duplicate field error type",
			errType:  ErrTypeDuplicateField,
			expected: "DUPLICATE_FIELD",
		},
		{
			name:     "missing value error type",
			errType:  ErrTypeMissingValue,
			expected: "MISSING_VALUE",
		},
		{
			name:     "parsing error type",
			errType:  ErrTypeParsing,
			expected: "PARSING",
		},
		{
			name:     "storage error type",
			errType:  ErrTypeStorage,
			expected: "STORAGE",
		},
		{
			name:     "validation error type",
			errType:  ErrTypeValidation,
			expected: "VALIDATION",
		},
		{
			name:     "config error type",
			errType:  ErrTypeConfig,
			expected: "CONFIG",
		},
		{
			name:     "not found error type",
			errType:  ErrTypeNotFound,
			expected: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeUnknownField,
				Message: `unknown field "age"`,
				Cause:   nil,
			},
			wantMessage: `[UNKNOWN_FIELD] unknown field "age"`,
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "failed to write output file",
				Cause:   fmt.Errorf("disk full"),
			},
			wantMessage: "[STORAGE] failed to write output file: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := NewStorageError("cannot create directory", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("bad row", nil).
		WithContext("row", 7).
		WithContext("file", "responses.csv")

	require.NotNil(t, err.Context)
	assert.Equal(t, 7, err.Context["row"])
	assert.Equal(t, "responses.csv", err.Context["file"])
}

func TestIsType(t *testing.T) {
	unknownField := NewUnknownFieldError("dass_99")
	wrapped := fmt.Errorf("project stage: %w", unknownField)

	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{
			name:    "direct match",
			err:     unknownField,
			errType: ErrTypeUnknownField,
			want:    true,
		},
		{
			name:    "wrapped match",
			err:     wrapped,
			errType: ErrTypeUnknownField,
			want:    true,
		},
		{
			name:    "type mismatch",
			err:     unknownField,
			errType: ErrTypeMissingValue,
			want:    false,
		},
		{
			name:    "plain error",
			err:     fmt.Errorf("plain"),
			errType: ErrTypeUnknownField,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{
			name:     "unknown field",
			err:      NewUnknownFieldError("q1"),
			wantType: ErrTypeUnknownField,
		},
		{
			name:     "duplicate field",
			err:      NewDuplicateFieldError("dass_1"),
			wantType: ErrTypeDuplicateField,
		},
		{
			name:     "missing value",
			err:      NewMissingValueError("depression", "dass_3", 12),
			wantType: ErrTypeMissingValue,
		},
		{
			name:     "parsing",
			err:      NewParsingError("bad header", nil),
			wantType: ErrTypeParsing,
		},
		{
			name:     "storage",
			err:      NewStorageError("write failed", fmt.Errorf("io error")),
			wantType: ErrTypeStorage,
		},
		{
			name:     "validation",
			err:      NewValidationError("empty scale"),
			wantType: ErrTypeValidation,
		},
		{
			name:     "config",
			err:      NewConfigError("bad yaml", fmt.Errorf("unmarshal")),
			wantType: ErrTypeConfig,
		},
		{
			name:     "not found",
			err:      NewNotFoundError("spec file"),
			wantType: ErrTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestNewMissingValueError_Context(t *testing.T) {
	err := NewMissingValueError("anxiety", "dass_2", 4)

	assert.Equal(t, "anxiety", err.Context["group"])
	assert.Equal(t, "dass_2", err.Context["field"])
	assert.Equal(t, 4, err.Context["row"])
}
