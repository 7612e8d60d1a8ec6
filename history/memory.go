package history

import (
	"sync"

	"github.com/promptrelay/promptrelay/core"
)

// DefaultMemoryLimit bounds the in-memory exchange window.
const DefaultMemoryLimit = 100

// InMemoryStore is a volatile Store implementation keeping a bounded
// window of exchanges in a process local slice. It is safe for
// concurrent access and best suited for tests or ephemeral demo
// servers. Returned slices are copies to prevent external mutation of
// internal state.
type InMemoryStore struct {
	mu      sync.RWMutex
	limit   int
	entries []core.Exchange
}

// NewInMemoryStore constructs an empty in-memory store with the default
// window size.
func NewInMemoryStore() *InMemoryStore {
	return NewInMemoryStoreWithLimit(DefaultMemoryLimit)
}

// NewInMemoryStoreWithLimit constructs a store keeping at most limit
// exchanges; older entries are discarded.
func NewInMemoryStoreWithLimit(limit int) *InMemoryStore {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &InMemoryStore{limit: limit}
}

// Append records an exchange, evicting the oldest when over the limit.
func (s *InMemoryStore) Append(ex core.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, ex)
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
	return nil
}

// Recent returns up to n exchanges, newest first.
func (s *InMemoryStore) Recent(n int) ([]core.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.entries) == 0 {
		return nil, nil
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]core.Exchange, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
