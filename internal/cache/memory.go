package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sheriph/chat-bot/internal/models"
)

// MemoryStore is the single-process fallback used when Redis is disabled,
// and the backend the tests run against. Expiry is checked lazily on Get.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	env       Envelope
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, env Envelope) (string, error) {
	handle := newHandle()

	s.mu.Lock()
	s.entries[keyPrefix+handle] = memoryEntry{
		env:       env,
		expiresAt: s.now().Add(time.Duration(env.TTLSeconds) * time.Second),
	}
	s.mu.Unlock()

	return handle, nil
}

func (s *MemoryStore) Get(ctx context.Context, handle string) (Envelope, error) {
	s.mu.RLock()
	entry, ok := s.entries[keyPrefix+handle]
	s.mu.RUnlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return Envelope{}, models.ErrNotFoundOrExpired
	}
	return entry.env, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
