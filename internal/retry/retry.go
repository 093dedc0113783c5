package retry

import (
	"context"
	"errors"
	"time"

	"codeberg.org/kbase/server/internal/llm"
)

// one retry after the first failure
const MaxAttempts = 2

// runs fn under the per-call timeout, retrying once. dimension mismatches and
// a cancelled parent context are returned immediately. onRetry, if set, is
// called with the error that triggers the second attempt.
func Do(ctx context.Context, timeout time.Duration, onRetry func(err error), fn func(ctx context.Context) error) error {
	var err error

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		err = fn(callCtx)
		cancel()

		if err == nil {
			return nil
		}

		if !Retryable(ctx, err) {
			return err
		}

		if attempt < MaxAttempts && onRetry != nil {
			onRetry(err)
		}
	}

	return err
}

// reports whether a failed call is worth another attempt
func Retryable(ctx context.Context, err error) bool {
	if errors.Is(err, llm.ErrDimensionMismatch) {
		return false
	}

	return ctx.Err() == nil
}
