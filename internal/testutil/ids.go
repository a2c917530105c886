package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates "<prefix>0001", "<prefix>0002", ... so template
// ids are stable across test runs and golden files.
//
// Safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix means "test-".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "test-"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%04d", g.prefix, g.n)
}

// FixedID returns the same id on every call. Useful for provoking id
// collisions.
type FixedID string

// Generate returns the fixed id.
func (f FixedID) Generate() string { return string(f) }
