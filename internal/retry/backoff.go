// Package retry retries the forwarder connection with exponential
// backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// PermanentError wraps an error that retrying cannot fix, such as a
// malformed face URI or a rejected SSH key.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err has been marked with Permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Backoff spaces out connection attempts.
type Backoff struct {
	// InitialDelay is the wait after the first failure (default 500ms).
	InitialDelay time.Duration
	// MaxDelay caps the wait (default 5s).
	MaxDelay time.Duration
	// Multiplier grows the wait after each failure (default 2.0).
	Multiplier float64
	// MaxAttempts is the total number of tries.  Zero or one means a
	// single attempt.
	MaxAttempts int
	// Jitter spreads each wait by ±25%.
	Jitter bool
	// OnRetry, if set, is told about every failed attempt that will be
	// retried along with the wait before the next one.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// ForAttempts returns the backoff used to reach the forwarder.
func ForAttempts(n int) *Backoff {
	return &Backoff{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  n,
		Jitter:       true,
	}
}

// Do calls fn until it succeeds, returns a Permanent error, runs out of
// attempts or ctx is done.  attempt is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	delay := b.InitialDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	maxAttempts := b.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if attempt >= maxAttempts {
			if maxAttempts == 1 {
				return err
			}
			return fmt.Errorf("giving up after %d attempts: %w", maxAttempts, err)
		}

		wait := delay
		if b.Jitter {
			wait = addJitter(delay)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}

		delay = time.Duration(float64(delay) * multiplier)
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := (rand.Float64() * 2 * quarter) - quarter
	return time.Duration(math.Max(float64(d)+delta, float64(time.Millisecond)))
}
