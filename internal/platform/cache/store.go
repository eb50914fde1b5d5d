package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/riskibarqy/rugby-analytics/internal/platform/resilience"
)

var errNilLoader = errors.New("cache: loader is required")

// Store memoizes loader results by key for the lifetime of its owner. An
// ingest run owns one for its resolution lookups and clears it when the
// run ends; nothing is shared between runs.
type Store struct {
	flight resilience.SingleFlight

	mu      sync.RWMutex
	entries map[string]any
}

func NewStore() *Store {
	return &Store{entries: make(map[string]any)}
}

// GetOrLoad returns the value cached under key or runs loader, once per key
// across concurrent callers. Errors are returned but never cached. An empty
// key bypasses the cache.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, errNilLoader
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.lookup(key); ok {
		return v, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		if v, ok := s.lookup(key); ok {
			return v, nil
		}
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.entries[key] = loaded
		s.mu.Unlock()
		return loaded, nil
	})
	return v, err
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) Clear() {
	s.mu.Lock()
	clear(s.entries)
	s.mu.Unlock()
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}
