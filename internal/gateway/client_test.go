package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/session"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
)

func authedContext(t *testing.T, store session.Store) (context.Context, string) {
	t.Helper()
	ctx := context.Background()
	id := session.NewSessionID()
	principal := &models.Principal{
		Username:    "alice",
		Role:        models.RoleAdmin,
		AccessToken: "tok-123",
	}
	require.NoError(t, store.Put(ctx, id, principal))
	return WithCaller(ctx, id, principal), id
}

func newTestClient(t *testing.T, handler http.HandlerFunc, store session.Store) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 5*time.Second, zap.NewNop(), store)
}

func TestDoInjectsBearerAndUnwrapsEnvelope(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"ok","data":{"id":7,"name":"Rwanda"}}`))
	}, store)

	ctx, _ := authedContext(t, store)
	var out models.Record
	require.NoError(t, client.Do(ctx, http.MethodGet, "/api/country/7", nil, &out))
	assert.Equal(t, "7", out.ID())
	assert.Equal(t, "Rwanda", out.String("name"))
}

func TestDoDecodesBarePayload(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Kigali"}`))
	}, store)

	ctx, _ := authedContext(t, store)
	var out models.Record
	require.NoError(t, client.Do(ctx, http.MethodGet, "/api/entity/1", nil, &out))
	assert.Equal(t, "Kigali", out.String("name"))
}

func TestDoAnonymousSkipsAuthorization(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}, store)

	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/api/health", nil, nil))
}

func TestDoValidationErrorCarriesUpstreamMessage(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","message":"name is required"}`))
	}, store)

	ctx, _ := authedContext(t, store)
	err := client.Do(ctx, http.MethodPost, "/api/country", map[string]string{}, nil)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "name is required", appErr.Message)
}

func TestDoAuthExpiredClearsSession(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, store)

	ctx, sessionID := authedContext(t, store)
	err := client.Do(ctx, http.MethodGet, "/api/country", nil, nil)
	assert.ErrorIs(t, err, appErrors.ErrAuthExpired)

	_, hydrateErr := store.Hydrate(context.Background(), sessionID)
	assert.ErrorIs(t, hydrateErr, session.ErrNotFound)
}

func TestDoForbiddenAlsoClearsSession(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, store)

	ctx, sessionID := authedContext(t, store)
	err := client.Do(ctx, http.MethodGet, "/api/users", nil, nil)
	assert.ErrorIs(t, err, appErrors.ErrAuthExpired)

	_, hydrateErr := store.Hydrate(context.Background(), sessionID)
	assert.ErrorIs(t, hydrateErr, session.ErrNotFound)
}

func TestDoNotFound(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, store)

	ctx, _ := authedContext(t, store)
	err := client.Do(ctx, http.MethodGet, "/api/country/999", nil, nil)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDoUpstreamFailure(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, store)

	ctx, sessionID := authedContext(t, store)
	err := client.Do(ctx, http.MethodGet, "/api/country", nil, nil)
	assert.ErrorIs(t, err, appErrors.ErrUpstream)

	// A 5xx is not an auth signal, the session survives.
	_, hydrateErr := store.Hydrate(context.Background(), sessionID)
	assert.NoError(t, hydrateErr)
}

func TestDoUnreachable(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := New("http://127.0.0.1:1", time.Second, zap.NewNop(), store)

	ctx, _ := authedContext(t, store)
	err := client.Do(ctx, http.MethodGet, "/api/country", nil, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnreachable.Code, appErrors.FromError(err).Code)
}

func TestDownload(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="title-deed.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.4"))
	}, store)

	ctx, _ := authedContext(t, store)
	body, contentType, filename, err := client.Download(ctx, "/api/file/download/docs/title-deed.pdf")
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "title-deed.pdf", filename)
}

func TestTemplatePath(t *testing.T) {
	assert.Equal(t, "/api/country/:id", templatePath("/api/country/42"))
	assert.Equal(t, "/api/country", templatePath("/api/country?page=2"))
	assert.Equal(t, "/api/users/all", templatePath("/api/users/all"))
}
