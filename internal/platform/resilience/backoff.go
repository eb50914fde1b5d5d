package resilience

import (
	"context"
	"math"
	"time"
)

// Backoff describes a bounded exponential retry schedule. Attempt numbers
// are zero based: the wait after attempt n is BaseDelay * Multiplier^n.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts: 4,
		BaseDelay:   800 * time.Millisecond,
		Multiplier:  1.8,
	}
}

func NormalizeBackoff(b Backoff) Backoff {
	defaults := DefaultBackoff()
	if b.MaxAttempts < 1 {
		b.MaxAttempts = defaults.MaxAttempts
	}
	if b.BaseDelay < 0 {
		b.BaseDelay = defaults.BaseDelay
	}
	if b.Multiplier < 1 {
		b.Multiplier = defaults.Multiplier
	}
	return b
}

func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return time.Duration(float64(b.BaseDelay) * math.Pow(b.Multiplier, float64(attempt)))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
