package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator creates sortable opaque ids, used to tag ingestion runs.
type Generator interface {
	NewID() (string, error)
}

// ULIDGenerator is safe for concurrent use. Ids created within the same
// millisecond stay monotonic.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *ULIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	value, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return value.String(), nil
}

// StaticGenerator returns the same id every time. Tests only.
type StaticGenerator string

func (g StaticGenerator) NewID() (string, error) {
	return string(g), nil
}
