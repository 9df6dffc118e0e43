package config

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts  = 1
	defaultBaseDelay    = 250 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryMetadata describes how a retried call went.
type RetryMetadata struct {
	Attempts   int
	TotalDelay time.Duration
}

type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets how many times fn is called at most.
func WithMaxAttempts(attempts int) RetryOption {
	return func(c *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		c.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the delay before the second attempt. Each further delay doubles.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(c *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		c.baseDelay = delay

		return nil
	}
}

// WithJitterFactor adds up to factor times the delay at random.
func WithJitterFactor(factor float64) RetryOption {
	return func(c *retryConfig) error {
		if factor < 0 || factor > 1 {
			return ErrInvalidJitterFactor
		}

		c.jitterFactor = factor

		return nil
	}
}

// RetryWithExponentialBackoff calls fn until it succeeds or the attempts are used up.
// Errors caused by ctx ending are not retried. The last error is returned.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn func(ctx context.Context) error,
	options ...RetryOption,
) (RetryMetadata, error) {
	c := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return RetryMetadata{}, err
		}
	}

	var (
		meta    RetryMetadata
		lastErr error
	)

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * c.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			delay += time.Duration(jitter)

			select {
			case <-time.After(delay):
				meta.TotalDelay += delay
			case <-ctx.Done():
				return meta, errors.Join(ctx.Err(), lastErr)
			}
		}

		meta.Attempts++

		lastErr = fn(ctx)
		if lastErr == nil {
			return meta, nil
		}

		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return meta, lastErr
		}
	}

	return meta, lastErr
}
