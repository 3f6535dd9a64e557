package ledger

import (
	"context"
	"sync"

	"github.com/evidify/platform/internal/shared/errors"
)

// MemoryStore keeps session chains in process memory. Used in development
// mode when no event store is configured, and by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	chains map[string][]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chains: make(map[string][]Entry)}
}

func (m *MemoryStore) Append(ctx context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chain := m.chains[e.SessionID]
	if int64(len(chain))+1 != e.Sequence {
		return errors.Conflict("out-of-order append")
	}
	m.chains[e.SessionID] = append(chain, *e)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, sessionID string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := m.chains[sessionID]
	out := make([]Entry, len(chain))
	copy(out, chain)
	return out, nil
}

// Corrupt overwrites a stored entry in place. Test hook: the production
// stores have no mutation path, which is the property under test.
func (m *MemoryStore) Corrupt(sessionID string, index int, mutate func(*Entry)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chain := m.chains[sessionID]
	if index >= 0 && index < len(chain) {
		mutate(&chain[index])
	}
}
