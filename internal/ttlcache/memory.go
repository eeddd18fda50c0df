package ttlcache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in process memory. It does not survive restarts;
// use RedisStore where sessions must outlive the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	opts    options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		opts:    buildOptions(opts),
	}
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl <= 0 {
		delete(s.entries, key)
		return
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries[key] = entry{Value: stored, ExpiresAt: s.opts.clock().Add(ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		s.opts.metrics.IncCacheLookup("miss")
		return nil, false
	}
	if e.expired(s.opts.clock()) {
		delete(s.entries, key)
		s.opts.metrics.IncCacheLookup("expired")
		return nil, false
	}
	s.opts.metrics.IncCacheLookup("hit")
	out := make([]byte, len(e.Value))
	copy(out, e.Value)
	return out, true
}

func (s *MemoryStore) Remove(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len reports the number of stored entries, including expired ones that no
// read has evicted yet.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
