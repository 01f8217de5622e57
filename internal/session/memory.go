package session

import (
	"context"
	"sync"
	"time"

	"github.com/ingenzi/console-gateway/internal/models"
)

// MemoryStore is an in-process Store used in tests and single-node setups.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	principal models.Principal
	expiresAt time.Time
}

// NewMemoryStore builds an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Hydrate(_ context.Context, sessionID string) (*models.Principal, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	principal := entry.principal
	return &principal, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, principal *models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry{
		principal: *principal,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
