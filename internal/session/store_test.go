package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingenzi/console-gateway/internal/models"
)

func testPrincipal(username string) *models.Principal {
	return &models.Principal{
		Username:    username,
		FullName:    "Test User",
		RoleLabel:   "System Administrator",
		Role:        models.ResolveRole("System Administrator"),
		AccessToken: "token-" + username,
		IssuedAt:    time.Now().UTC(),
	}
}

func TestMemoryStorePutHydrate(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	id := NewSessionID()

	require.NoError(t, store.Put(ctx, id, testPrincipal("alice")))

	got, err := store.Hydrate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.True(t, got.Authenticated())
}

func TestMemoryStorePutReplacesWholePrincipal(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	id := NewSessionID()

	require.NoError(t, store.Put(ctx, id, testPrincipal("alice")))
	require.NoError(t, store.Put(ctx, id, testPrincipal("bob")))

	got, err := store.Hydrate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, "token-bob", got.AccessToken)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	id := NewSessionID()

	require.NoError(t, store.Put(ctx, id, testPrincipal("alice")))
	require.NoError(t, store.Clear(ctx, id))

	_, err := store.Hydrate(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing again must stay a no-op.
	assert.NoError(t, store.Clear(ctx, id))
}

func TestMemoryStoreHydrateUnknown(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	_, err := store.Hydrate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()
	id := NewSessionID()

	require.NoError(t, store.Put(ctx, id, testPrincipal("alice")))
	time.Sleep(25 * time.Millisecond)

	_, err := store.Hydrate(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsAuthenticated(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	id := NewSessionID()

	assert.False(t, IsAuthenticated(ctx, store, id))

	require.NoError(t, store.Put(ctx, id, testPrincipal("alice")))
	assert.True(t, IsAuthenticated(ctx, store, id))

	require.NoError(t, store.Put(ctx, id, &models.Principal{Username: "ghost"}))
	assert.False(t, IsAuthenticated(ctx, store, id))
}
