// Package retry runs fallible operations with exponential backoff.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
)

// Policy controls how many times an operation runs and how the pause between
// attempts grows. Pure configuration, immutable.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Default suits interactive fetches where failing fast matters more than
// eventually winning.
func Default() Policy {
	return Policy{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2}
}

// Submission tolerates more and longer retries: losing an answer is costlier
// than a failed fetch.
func Submission() Policy {
	return Policy{MaxAttempts: 5, InitialDelay: 2 * time.Second, MaxDelay: 30 * time.Second, Multiplier: 2}
}

// Delay reports the pause that follows failed attempt k (0-indexed), capped at
// MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	d := time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt)))
	if d > p.MaxDelay || d < 0 {
		return p.MaxDelay
	}
	return d
}

// Do calls op up to p.MaxAttempts times, sleeping Delay(k) after failed
// attempt k. The first success returns immediately and no delay follows the
// final attempt. When every attempt fails, the last observed error is
// returned, never a synthetic one. Cancellation of ctx stops the loop between
// attempts and surfaces ctx.Err(); it is never swallowed as a retryable
// failure.
//
// Sleeps go through clk so tests never wait on a wall clock.
func Do[T any](ctx context.Context, clk clock.Clock, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == p.MaxAttempts-1 {
			break
		}
		timer := clk.Timer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}
