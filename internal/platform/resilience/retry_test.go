package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	policy := NewRetryPolicy(3, time.Millisecond)
	var slept []time.Duration
	policy.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	calls := 0
	err := policy.Run(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(slept) != 2 || slept[0] != time.Millisecond || slept[1] != 2*time.Millisecond {
		t.Fatalf("expected doubling backoff, got %v", slept)
	}
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	policy := NewRetryPolicy(2, time.Millisecond)
	policy.sleep = func(context.Context, time.Duration) error { return nil }

	wantErr := errors.New("storage down")
	calls := 0
	err := policy.Run(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped last error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestRetryPolicy_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	policy := NewRetryPolicy(5, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := policy.Run(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt before cancel, got %d", calls)
	}
}
