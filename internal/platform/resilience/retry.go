package resilience

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy re-runs an operation a fixed number of times with exponential
// backoff. It backs the boot-time schema sync: a transient storage failure is
// retried, then abandoned so the process can keep serving in degraded mode.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryPolicy(maxAttempts int, backoff time.Duration) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     backoff,
		sleep:       sleepContext,
	}
}

// Run invokes fn until it succeeds or attempts are exhausted. The delay
// doubles after each failure. Context cancellation stops the loop early.
func (p *RetryPolicy) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := p.Backoff
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
	return fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
