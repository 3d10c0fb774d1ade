package providers

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy beschreibt Wiederholversuche mit exponentiellem Backoff und
// zufälligem Jitter. Nach MaxAttempts wird der letzte Fehler gemeldet,
// statt endlos zu wiederholen.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy deckt die Rate-Limits der externen APIs ab.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    10 * time.Second,
}

// WithRetry führt op aus und wiederholt bei als retryable gemeldeten Fehlern
// laut Policy. op meldet selbst, ob ein Fehler wiederholbar ist (z.B. 429).
func WithRetry(ctx context.Context, policy RetryPolicy, op func() (retryable bool, err error)) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	delay := policy.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		retryable, err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == policy.MaxAttempts {
			return lastErr
		}
		jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
		select {
		case <-time.After(delay + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
	return lastErr
}
