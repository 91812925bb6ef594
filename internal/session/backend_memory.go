package session

import (
	"context"
	"sync"
)

type memoryKey struct {
	clientID string
	kind     Kind
}

// MemoryBackend keeps session blobs in-process. Suitable for tests and
// single-instance deployments without redis.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[memoryKey][]byte
}

// NewMemoryBackend initializes an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[memoryKey][]byte)}
}

// Get returns the stored value for client+kind.
func (m *MemoryBackend) Get(_ context.Context, clientID string, kind Kind) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[memoryKey{clientID, kind}]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores or replaces the value for client+kind.
func (m *MemoryBackend) Set(_ context.Context, clientID string, kind Kind, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[memoryKey{clientID, kind}] = v
	return nil
}

// Delete removes the given kinds for a client.
func (m *MemoryBackend) Delete(_ context.Context, clientID string, kinds ...Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kind := range kinds {
		delete(m.data, memoryKey{clientID, kind})
	}
	return nil
}
