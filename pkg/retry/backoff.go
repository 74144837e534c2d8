package retry

import "time"

// BackoffStrategyRetry doubles the delay on every attempt, starting at
// baseDelay and capped at maxDelay, until maxAttempts is reached.
type BackoffStrategyRetry struct {
	baseDelay   time.Duration
	maxDelay    time.Duration
	maxAttempts int
}

func newBackoffStrategyRetry() *BackoffStrategyRetry {
	return &BackoffStrategyRetry{
		baseDelay:   time.Second,
		maxDelay:    time.Minute,
		maxAttempts: 3,
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(r Retry) {
		r.(*BackoffStrategyRetry).baseDelay = d
	}
}

func WithMaxDelay(d time.Duration) Option {
	return func(r Retry) {
		r.(*BackoffStrategyRetry).maxDelay = d
	}
}

func WithMaxAttempts(n int) Option {
	return func(r Retry) {
		r.(*BackoffStrategyRetry).maxAttempts = n
	}
}

func (r *BackoffStrategyRetry) NextDelay(attempts int) time.Duration {
	if attempts >= r.maxAttempts {
		return Stop
	}
	delay := r.baseDelay << (attempts - 1)
	if delay > r.maxDelay {
		return r.maxDelay
	}
	return delay
}
