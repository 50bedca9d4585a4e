// Package retry provides the backoff policy shared by the orchestrator's
// generation loop and the research planner, so both degrade the same way
// instead of each carrying its own ad hoc loop.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy describes how many times an operation may run and how long to wait
// between attempts. Retryable decides whether a given failure is worth
// another attempt; a nil Retryable retries everything.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Retryable   func(error) bool
}

// DefaultPolicy matches the orchestrator's generation loop: three attempts,
// exponential backoff starting at one second.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2.0,
		Retryable:   retryable,
	}
}

// Do runs fn until it succeeds, the policy is exhausted, a non-retryable
// error occurs, or ctx is done. An intentional cancellation is never treated
// as a provider failure: context errors abort immediately without a retry.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := p.BaseDelay

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return lastErr
}
