package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewRangeError("start 1402-05-10 is after end 1402-05-01"),
			want: "[RANGE] start 1402-05-10 is after end 1402-05-01",
		},
		{
			name: "with cause",
			err:  NewFetchError("request for 1402-05-01 failed", fmt.Errorf("connection refused")),
			want: "[FETCH] request for 1402-05-01 failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewStorageError("write failed", cause)

	require.ErrorIs(t, err, cause)
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{
			name:    "matching type",
			err:     NewNoInputError("no staged files"),
			errType: ErrTypeNoInput,
			want:    true,
		},
		{
			name:    "mismatched type",
			err:     NewNoInputError("no staged files"),
			errType: ErrTypeParameter,
			want:    false,
		},
		{
			name:    "wrapped app error",
			err:     fmt.Errorf("analyze: %w", NewParameterError("top-N must be positive")),
			errType: ErrTypeParameter,
			want:    true,
		},
		{
			name:    "plain error",
			err:     stderrors.New("plain"),
			errType: ErrTypeFetch,
			want:    false,
		},
		{
			name:    "nil error",
			err:     nil,
			errType: ErrTypeFetch,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}
