package cache

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]map[string]Entry{}}
}

func (m *MemoryStore) Get(ctx context.Context, session, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[session][key]
	return e, ok, nil
}

func (m *MemoryStore) Put(ctx context.Context, session, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.sessions[session]
	if !ok {
		entries = map[string]Entry{}
		m.sessions[session] = entries
	}
	entries[key] = e
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, session string) error {
	m.mu.Lock()
	delete(m.sessions, session)
	m.mu.Unlock()
	return nil
}
