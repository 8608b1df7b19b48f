package worker

import (
	"context"
	"errors"
	"math"
	"time"
)

// ExponentialBackoff implements a standard backoff strategy.
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
}

// DefaultBackoff returns 2s, 4s, 8s ... capped at 60s, for three attempts.
func DefaultBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialDelay: 2 * time.Second,
		MaxDelay:     60 * time.Second,
		MaxAttempts:  3,
	}
}

// GetDelay calculates delay: InitialDelay * 2^attempt
func (s *ExponentialBackoff) GetDelay(attempt int) time.Duration {
	delay := float64(s.InitialDelay) * math.Pow(2, float64(attempt))
	if delay > float64(s.MaxDelay) {
		return s.MaxDelay
	}
	return time.Duration(delay)
}

// ShouldRetry reports whether another attempt is allowed after the
// given (1-based) number of attempts. Cancellation is never retried.
func (s *ExponentialBackoff) ShouldRetry(err error, attempts int) bool {
	if attempts >= s.MaxAttempts {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
