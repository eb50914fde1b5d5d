package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig guards the provider client. Disabled unless asked
// for, so a default run is plain bounded retry.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxReq:   1,
	}
}

// NewCircuitBreakerFromConfig returns nil when the breaker is disabled; a
// nil *CircuitBreaker runs every call straight through.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return &CircuitBreaker{cfg: cfg, state: CircuitStateClosed, now: time.Now}
}

// CircuitBreaker trips after consecutive provider failures and lets
// HalfOpenMaxReq probes through once the open timeout has passed. All
// probes must succeed to close it again.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig
	now func() time.Time

	state    CircuitState
	failures int
	openedAt time.Time
	probes   int
	passed   int
}

// Do runs fn behind the breaker. Only errors classified by countsAsFailure
// move the breaker towards open; a nil classifier counts every error.
func (b *CircuitBreaker) Do(fn func() error, countsAsFailure func(error) bool) error {
	if b == nil {
		return fn()
	}
	if !b.acquire() {
		return ErrCircuitOpen
	}

	err := fn()
	b.release(err != nil && (countsAsFailure == nil || countsAsFailure(err)))
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return false
		}
		b.set(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return false
		}
		b.probes++
	}
	return true
}

func (b *CircuitBreaker) release(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.set(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		if failed {
			b.set(CircuitStateOpen)
			return
		}
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq {
			b.set(CircuitStateClosed)
		}
	case CircuitStateOpen:
		// a call admitted before the trip finished late
		if failed {
			b.openedAt = b.now()
		}
	}
}

func (b *CircuitBreaker) set(state CircuitState) {
	b.state = state
	b.failures = 0
	b.probes = 0
	b.passed = 0
	if state == CircuitStateOpen {
		b.openedAt = b.now()
	}
}
