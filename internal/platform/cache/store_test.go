package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "team:ext:135", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_KeepsEntriesUntilClear(t *testing.T) {
	t.Parallel()

	store := NewStore()

	ctx := context.Background()
	for _, key := range []string{"team:ext:135", "team:name:bulls", "venue:ext:9"} {
		if _, err := store.GetOrLoad(ctx, key, func(context.Context) (any, error) { return int64(1), nil }); err != nil {
			t.Fatalf("load %s: %v", key, err)
		}
	}

	if store.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", store.Len())
	}

	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("expected empty store after clear")
	}
}

func TestStore_EmptyKeyBypassesCache(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var calls atomic.Int32
	loader := func(context.Context) (any, error) { return calls.Add(1), nil }

	_, _ = store.GetOrLoad(context.Background(), "", loader)
	_, _ = store.GetOrLoad(context.Background(), "", loader)
	if calls.Load() != 2 || store.Len() != 0 {
		t.Fatalf("empty key must not cache, calls=%d len=%d", calls.Load(), store.Len())
	}
	if _, err := store.GetOrLoad(context.Background(), "k", nil); err == nil {
		t.Fatalf("expected nil loader error")
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("transient")
		}
		return int64(7), nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err == nil {
		t.Fatalf("expected first load error")
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || v.(int64) != 7 {
		t.Fatalf("expected retry to load, got %v %v", v, err)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
