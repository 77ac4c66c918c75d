// Package transport issues service API calls with bounded, deterministic
// exponential-backoff retry.
package transport

import (
	"context"
	"time"

	"xolium-sdk/internal/domain"
	"xolium-sdk/internal/sdkerr"
	"xolium-sdk/internal/validation"
)

// ParseRetryPolicy validates p and returns it unchanged.
func ParseRetryPolicy(p domain.RetryPolicy) (domain.RetryPolicy, error) {
	if err := validation.RetryPolicy(p).InvalidInput("Invalid retry policy"); err != nil {
		return domain.RetryPolicy{}, err
	}
	return p, nil
}

// ComputeDeterministicDelay returns min(maxDelayMs, baseDelayMs * 2^attemptIndex).
// There is no jitter: the same inputs always give the same delay.
func ComputeDeterministicDelay(attemptIndex, baseDelayMs, maxDelayMs int) (int, error) {
	if attemptIndex < 0 {
		return 0, sdkerr.InvalidInputDetails("attemptIndex must be a non-negative integer", sdkerr.Details{
			"attemptIndex": attemptIndex,
		})
	}

	delay := baseDelayMs
	for i := 0; i < attemptIndex && delay < maxDelayMs; i++ {
		delay *= 2
	}
	if delay > maxDelayMs {
		delay = maxDelayMs
	}
	return delay, nil
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d < 0 {
		return sdkerr.InvalidInputDetails("sleep requires a non-negative duration", sdkerr.Details{
			"ms": d.Milliseconds(),
		})
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
