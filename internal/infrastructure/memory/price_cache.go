package memory

import (
	"context"
	"sync"
	"time"

	"cartshare/internal/domain"
)

type entry struct {
	results   []domain.PriceResult
	expiresAt time.Time
	timer     *time.Timer
}

// MemoryPriceCache is the in-process fallback store used when no redis
// address is configured. Each entry carries its own expiry timer; there
// is no sweep loop.
type MemoryPriceCache struct {
	entries map[string]*entry
	mutex   sync.RWMutex
}

func NewMemoryPriceCache() *MemoryPriceCache {
	return &MemoryPriceCache{entries: make(map[string]*entry)}
}

func (m *MemoryPriceCache) Get(_ context.Context, key string) ([]domain.PriceResult, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	e, exists := m.entries[key]
	if !exists {
		return nil, false, nil
	}
	// The timer may not have fired yet on a just-expired entry.
	if time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.results, true, nil
}

// Set stores results under key, overwriting any existing entry and
// restarting its expiry clock.
func (m *MemoryPriceCache) Set(_ context.Context, key string, results []domain.PriceResult, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if old, exists := m.entries[key]; exists {
		old.timer.Stop()
	}

	e := &entry{
		results:   results,
		expiresAt: time.Now().Add(ttl),
	}
	e.timer = time.AfterFunc(ttl, func() {
		m.expire(key, e)
	})
	m.entries[key] = e
	return nil
}

// expire removes the entry the timer was armed for, unless a newer write
// already replaced it.
func (m *MemoryPriceCache) expire(key string, e *entry) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current, exists := m.entries[key]; exists && current == e {
		delete(m.entries, key)
	}
}

// Len reports the number of live entries.
func (m *MemoryPriceCache) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.entries)
}
