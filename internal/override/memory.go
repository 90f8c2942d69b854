package override

import (
	"context"
	"sync"
)

// MemoryStore keeps override flags in process memory. Flags do not survive a
// restart and are invisible to other gateway instances; deployments that need
// shared flags run the Redis-backed store instead.
type MemoryStore struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: make(map[string]bool)}
}

func (m *MemoryStore) Get(ctx context.Context, clientID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[clientID], nil
}

func (m *MemoryStore) Set(ctx context.Context, clientID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[clientID] = enabled
	return nil
}

func (m *MemoryStore) All(ctx context.Context) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool, len(m.flags))
	for id, enabled := range m.flags {
		out[id] = enabled
	}
	return out, nil
}
