package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ingenzi/console-gateway/internal/models"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Store holds the authenticated principal for each browser session. There is
// exactly one principal slot per session: Put replaces the whole value
// atomically and Clear removes it. Callers receive the store by reference, it
// is never reachable through package globals.
type Store interface {
	// Hydrate loads the principal for the session, ErrNotFound when absent.
	Hydrate(ctx context.Context, sessionID string) (*models.Principal, error)
	// Put stores the principal, replacing any previous value and resetting
	// the session TTL.
	Put(ctx context.Context, sessionID string, principal *models.Principal) error
	// Clear removes the session. Clearing an absent session is not an error.
	Clear(ctx context.Context, sessionID string) error
}

// NewSessionID mints an opaque session handle.
func NewSessionID() string {
	return uuid.NewString()
}

// IsAuthenticated reports whether the session holds a principal with a token.
func IsAuthenticated(ctx context.Context, store Store, sessionID string) bool {
	principal, err := store.Hydrate(ctx, sessionID)
	if err != nil {
		return false
	}
	return principal.Authenticated()
}

// RedisStore keeps sessions in Redis as JSON blobs with a rolling TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Hydrate(ctx context.Context, sessionID string) (*models.Principal, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var principal models.Principal
	if err := json.Unmarshal([]byte(raw), &principal); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &principal, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, principal *models.Principal) error {
	payload, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
