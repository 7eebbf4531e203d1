package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	var delays []time.Duration
	p := Policy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		Sleep:       func(d time.Duration) { delays = append(delays, d) },
	}

	calls := 0
	err := Do(p, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDo_RecoversAfterFailures(t *testing.T) {
	var delays []time.Duration
	p := Policy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		Sleep:       func(d time.Duration) { delays = append(delays, d) },
	}

	calls := 0
	err := Do(p, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, delays)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	var delays []time.Duration
	p := Policy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		Sleep:       func(d time.Duration) { delays = append(delays, d) },
	}

	lastErr := errors.New("still down")
	calls := 0
	err := Do(p, func() error {
		calls++
		return lastErr
	})

	assert.Equal(t, 3, calls, "budget must never be exceeded")
	assert.Same(t, lastErr, err, "last error is returned unwrapped")
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, delays)
}

func TestDoWithResult(t *testing.T) {
	p := Policy{
		MaxAttempts: 2,
		Backoff:     ExponentialBackoff(time.Second),
		Sleep:       func(time.Duration) {},
	}

	calls := 0
	v, err := DoWithResult(p, func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "payload", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "payload", v)
}

func TestExponentialBackoff(t *testing.T) {
	backoff := ExponentialBackoff(time.Second)

	assert.Equal(t, 1*time.Second, backoff(0))
	assert.Equal(t, 2*time.Second, backoff(1))
	assert.Equal(t, 4*time.Second, backoff(2))
}
