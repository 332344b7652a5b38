// Package retry provides a small bounded exponential-backoff policy used to
// wrap whole operations (e.g. an upload batch) rather than single requests.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy bounds attempts and spaces them with exponential backoff.
type Policy struct {
	MaxAttempts int
	BackoffBase time.Duration
	Multiplier  float64
	MaxBackoff  time.Duration
}

// Default returns the pipeline's standard policy: three attempts, waiting
// 2^attempt seconds between them.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BackoffBase: 2 * time.Second,
		Multiplier:  2.0,
		MaxBackoff:  30 * time.Second,
	}
}

// Do runs fn until it succeeds, attempts are exhausted, or the context is
// canceled. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := p.BackoffBase
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
			if p.MaxBackoff > 0 && delay > p.MaxBackoff {
				delay = p.MaxBackoff
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}

	if lastErr == nil {
		lastErr = errors.New("retry: exhausted")
	}
	return lastErr
}
