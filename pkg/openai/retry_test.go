package openai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryRequestErrorNotRetried(t *testing.T) {
	calls := 0
	reqErr := &RequestError{StatusCode: 401, Body: "bad key"}
	_, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		return "", reqErr
	}, 3, time.Second, WithSleeper(func(time.Duration) {
		t.Fatal("must not sleep for a non-retryable error")
	}))

	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
	var got *RequestError
	if !errors.As(err, &got) || got != reqErr {
		t.Fatalf("expected the original error back unchanged, got %v", err)
	}
}

func TestWithRetryTransientThenSuccess(t *testing.T) {
	calls := 0
	var delays []time.Duration
	base := 1000 * time.Millisecond

	out, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", &UpstreamError{StatusCode: 503, Body: "overloaded"}
		}
		return "graded", nil
	}, 3, base, WithSleeper(func(d time.Duration) {
		delays = append(delays, d)
	}))

	if err != nil {
		t.Fatalf("WithRetry returned error: %v", err)
	}
	if out != "graded" {
		t.Fatalf("expected success result, got %q", out)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	want := []time.Duration{base, 2 * base}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestWithRetryExhaustionReturnsLastError(t *testing.T) {
	calls := 0
	var delays []time.Duration
	lastErr := errors.New("still failing")

	_, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		if calls < 4 {
			return "", &UpstreamError{StatusCode: 500, Body: "boom"}
		}
		return "", lastErr
	}, 3, 10*time.Millisecond, WithSleeper(func(d time.Duration) {
		delays = append(delays, d)
	}))

	// maxRetries=3 means 4 total attempts.
	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
	if !errors.Is(err, lastErr) {
		t.Fatalf("expected the last observed error, got %v", err)
	}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("sleep %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestWithRetryMissingKeyNotRetried(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		return "", ErrAPIKeyMissing
	}, 3, time.Second, WithSleeper(func(time.Duration) {
		t.Fatal("must not sleep for a configuration error")
	}))

	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("expected ErrAPIKeyMissing, got %v", err)
	}
}

func TestWithRetryCancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := WithRetry(ctx, func() (string, error) {
		calls++
		cancel()
		return "", &UpstreamError{StatusCode: 500, Body: "boom"}
	}, 3, time.Millisecond)

	if calls != 1 {
		t.Fatalf("expected one attempt before cancellation, got %d", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
