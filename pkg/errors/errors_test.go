package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_MatchesSentinel(t *testing.T) {
	err := Newf(ErrMalformedInput, "reading %s", "docs/a.txt")
	assert.Equal(t, "malformed input: reading docs/a.txt", err.Error())
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.False(t, errors.Is(err, ErrInvalidConfig))

	wrapped := fmt.Errorf("loading corpus: %w", err)
	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "reading docs/a.txt", appErr.Message)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"config", New(ErrInvalidConfig, "limit"), 2},
		{"input", fmt.Errorf("wrap: %w", ErrMalformedInput), 3},
		{"backend", New(ErrUnavailable, "redis"), 4},
		{"other", errors.New("boom"), 1},
		{"exhausted", ErrSelectorExhausted, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
