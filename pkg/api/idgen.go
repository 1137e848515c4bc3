package api

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces fresh node and instance ids. Implementations must
// return ids that are globally distinct within a single model. The generator
// is always injected, never a hidden global, so tests can substitute a
// deterministic one.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production IDGenerator, backed by random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}

// SequenceGenerator issues "prefix1", "prefix2", ... deterministically.
// Intended for tests and for reproducible model construction.
type SequenceGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceGenerator returns a SequenceGenerator with the given prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s%d", g.prefix, g.n.Add(1))
}
