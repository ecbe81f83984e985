package resilience

import (
	"context"
	"fmt"
	"time"
)

type outcome[T any] struct {
	val T
	err error
}

// Call runs fn under a deadline derived from ctx and returns its value. If
// fn ignores its context it keeps running in the background, but the caller
// gets context.DeadlineExceeded as soon as the limit passes. A non-positive
// timeout calls fn directly.
func Call[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn(timeoutCtx)
		done <- outcome[T]{val: v, err: err}
	}()
	select {
	case o := <-done:
		return o.val, o.err
	case <-timeoutCtx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, fmt.Errorf("%s: parent context cancelled: %w", name, ctx.Err())
		}
		return zero, fmt.Errorf("%s: %w (limit: %v)", name, context.DeadlineExceeded, timeout)
	}
}

// WithTimeout is Call for functions without a result.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	_, err := Call(ctx, timeout, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
