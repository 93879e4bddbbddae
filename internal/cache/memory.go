package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local cache. Entries are checked for expiry on
// read; there is no background sweeper, which is fine for the small number
// of guild-scoped keys this cache holds.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryCacheClock overrides the expiry clock, used by tests.
func WithMemoryCacheClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-process cache.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, ErrMiss
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
