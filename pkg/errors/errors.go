// Package errors defines the sentinel errors shared across the ranker and a
// contextual AppError wrapper that keeps them matchable with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound       = errors.New("key not found")
	ErrSelectorExhausted = errors.New("selector exhausted")
	ErrMalformedInput    = errors.New("malformed input")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnavailable       = errors.New("backend unavailable")
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// ExitCode maps an error to a process exit status for the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidConfig):
		return 2
	case errors.Is(err, ErrMalformedInput):
		return 3
	case errors.Is(err, ErrUnavailable):
		return 4
	default:
		return 1
	}
}
