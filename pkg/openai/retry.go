package openai

import (
	"context"
	"errors"
	"time"
)

// RetryOption customizes WithRetry.
type RetryOption func(*retrier)

// WithSleeper replaces the backoff sleep, useful for asserting delays in
// tests without waiting them out.
func WithSleeper(sleep func(time.Duration)) RetryOption {
	return func(r *retrier) {
		r.sleep = func(ctx context.Context, d time.Duration) error {
			sleep(d)
			return ctx.Err()
		}
	}
}

type retrier struct {
	sleep func(context.Context, time.Duration) error
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retryable reports whether an error from the completion client may be
// retried. Client-side request errors (HTTP 400/401/403), a missing
// credential, and context cancellation are terminal; everything else
// (timeouts, 5xx, rate limits) is transient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAPIKeyMissing) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var reqErr *RequestError
	return !errors.As(err, &reqErr)
}

// WithRetry runs fn with bounded exponential backoff: one initial attempt
// plus up to maxRetries retries, sleeping baseDelay * 2^attempt between
// attempts. Non-retryable errors propagate immediately; once attempts are
// exhausted the last observed error is returned unchanged.
func WithRetry(ctx context.Context, fn func() (string, error), maxRetries int, baseDelay time.Duration, opts ...RetryOption) (string, error) {
	r := &retrier{sleep: sleepContext}
	for _, opt := range opts {
		opt(r)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !Retryable(err) {
			return "", err
		}
		if attempt == maxRetries {
			break
		}

		delay := baseDelay * (1 << attempt)
		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", lastErr
}
