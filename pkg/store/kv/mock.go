package kv

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Mock is an in-memory Store for unit tests. TTLs are honored lazily (on
// Get), matching the simplicity a real TTL-aware cache shows through its
// public interface without needing a background reaper for test runs.
type Mock struct {
	mu   sync.Mutex
	data map[string]mockEntry
}

type mockEntry struct {
	raw       []byte
	expiresAt time.Time
}

func NewMock() *Mock {
	return &Mock{data: make(map[string]mockEntry)}
}

func (m *Mock) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := mockEntry{raw: raw}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.data[key] = entry
	return nil
}

func (m *Mock) Get(ctx context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	entry, ok := m.data[key]
	if ok && !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.data, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(entry.raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Mock) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Mock) Close() error { return nil }

var _ Store = (*Mock)(nil)
var _ Store = (*RedisStore)(nil)
