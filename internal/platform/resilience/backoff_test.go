package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoff_Delay(t *testing.T) {
	t.Parallel()

	b := DefaultBackoff()
	want := []time.Duration{
		800 * time.Millisecond,
		1440 * time.Millisecond,
		2592 * time.Millisecond,
	}
	for attempt, w := range want {
		got := b.Delay(attempt)
		if diff := got - w; diff > time.Millisecond || diff < -time.Millisecond {
			t.Fatalf("Delay(%d)=%s want %s", attempt, got, w)
		}
	}
}

func TestNormalizeBackoff(t *testing.T) {
	t.Parallel()

	got := NormalizeBackoff(Backoff{MaxAttempts: 0, BaseDelay: -1, Multiplier: 0.5})
	if got != DefaultBackoff() {
		t.Fatalf("expected defaults, got %+v", got)
	}

	zero := NormalizeBackoff(Backoff{MaxAttempts: 2, BaseDelay: 0, Multiplier: 2})
	if zero.BaseDelay != 0 || zero.MaxAttempts != 2 {
		t.Fatalf("explicit zero delay must be kept, got %+v", zero)
	}
}

func TestSleep_HonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("sleep did not return promptly")
	}
}
