package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable todo IDs: "todo-0001", "todo-0002", ...
//
// Zero padding keeps lexical and numeric order identical, which matters
// because ID is the final tie-breaker of the canonical todo order.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator with the "todo" prefix.
func NewSequentialIDs() *SequentialIDs {
	return NewSequentialIDsWithPrefix("todo")
}

// NewSequentialIDsWithPrefix creates a generator with a custom prefix.
func NewSequentialIDsWithPrefix(prefix string) *SequentialIDs {
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
