package retry

import (
	"context"
	"time"
)

type Strategy string

const (
	FixedStrategy   Strategy = "fixed"
	BackoffStrategy Strategy = "backoff"
)

// Stop is returned by NextDelay when no further attempt should be made.
const Stop time.Duration = -1

type Retry interface {
	NextDelay(attempts int) time.Duration
}

type Option func(Retry)

func NewRetry(strategy Strategy, opts ...Option) Retry {
	var retry Retry
	switch strategy {
	case FixedStrategy:
		retry = newFixedStrategyRetry()
	case BackoffStrategy:
		retry = newBackoffStrategyRetry()
	default:
		panic("invalid strategy: " + strategy)
	}
	for _, opt := range opts {
		opt(retry)
	}
	return retry
}

// Do runs fn until it succeeds, the strategy stops, retryable rejects the
// error, or ctx is cancelled. The last error is returned on exhaustion.
func Do(ctx context.Context, r Retry, retryable func(error) bool, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		delay := r.NextDelay(attempt)
		if delay == Stop {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
