package pricecache

import (
	"context"
	"sync"
	"time"
)

// entry stores one cached value with its expiry.
type entry struct {
	expiresAt time.Time
	value     []byte
}

// MemoryBackend is an in-process Backend for single-instance deployments.
// When MaxItems is positive the map is capped, evicting expired entries
// first and then arbitrary ones.
type MemoryBackend struct {
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend(maxItems int) *MemoryBackend {
	return &MemoryBackend{MaxItems: maxItems, items: make(map[string]entry), now: time.Now}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{expiresAt: now.Add(ttl), value: value}

	// best-effort cap
	if m.MaxItems > 0 && len(m.items) > m.MaxItems {
		for k, v := range m.items {
			if !now.Before(v.expiresAt) {
				delete(m.items, k)
			}
		}
		for k := range m.items {
			if len(m.items) <= m.MaxItems {
				break
			}
			if k != key {
				delete(m.items, k)
			}
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
