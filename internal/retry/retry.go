// Package retry implements the bounded retry policy used for the remote
// introspection call: a fixed attempt budget with exponential backoff and
// no jitter. Execution is strictly sequential — the caller blocks through
// every delay.
package retry

import "time"

// Sleeper pauses the caller for d. Tests substitute a recording fake so
// backoff schedules can be asserted without real waits.
type Sleeper func(d time.Duration)

// Policy defines how many times an operation is attempted and how long to
// wait before each retry.
type Policy struct {
	// MaxAttempts is the total attempt budget, including the first call.
	MaxAttempts int

	// Backoff returns the delay before retry number retry (0-based: the
	// delay after the first failure is Backoff(0)).
	Backoff func(retry int) time.Duration

	// Sleep defaults to time.Sleep when nil.
	Sleep Sleeper
}

// DefaultPolicy returns the fetch policy: 3 attempts with 1s then 2s
// delays between them.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
	}
}

// ExponentialBackoff returns base << retry: base, 2*base, 4*base, ...
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(retry int) time.Duration {
		return base << uint(retry)
	}
}

// Do runs fn up to p.MaxAttempts times, sleeping p.Backoff(i) before retry
// i. The first success short-circuits; after the budget is spent the last
// error is returned unwrapped so callers can classify it.
func Do(p Policy, fn func() error) error {
	_, err := DoWithResult(p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for operations that produce a value.
func DoWithResult[T any](p Policy, fn func() (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			sleep(p.Backoff(attempt - 1))
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
