package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestULIDGenerator_MonotonicWithinMillisecond(t *testing.T) {
	t.Parallel()

	gen := NewULIDGenerator()
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return fixed }

	prev := ""
	for i := 0; i < 50; i++ {
		value, err := gen.NewID()
		if err != nil {
			t.Fatalf("NewID error: %v", err)
		}
		parsed, err := ulid.ParseStrict(value)
		if err != nil {
			t.Fatalf("invalid ulid %q: %v", value, err)
		}
		if ulid.Time(parsed.Time()).UnixMilli() != fixed.UnixMilli() {
			t.Fatalf("unexpected timestamp in %q", value)
		}
		if value <= prev {
			t.Fatalf("expected increasing ids, got %q after %q", value, prev)
		}
		prev = value
	}
}
