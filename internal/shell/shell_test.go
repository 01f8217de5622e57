package shell

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/resource"
	"github.com/ingenzi/console-gateway/internal/session"
)

func panelTitles(composition Composition) []string {
	titles := make([]string, 0)
	for _, group := range composition.Groups {
		for _, panel := range group.Panels {
			titles = append(titles, panel.Title)
		}
	}
	return titles
}

func TestAdminComposition(t *testing.T) {
	composition := Compose(models.ResolveRole("System Administrator"))
	assert.Equal(t, models.RoleAdmin, composition.Role)

	titles := panelTitles(composition)
	assert.Contains(t, titles, "Countries")
	assert.Contains(t, titles, "Accounts")
	assert.Contains(t, titles, "Roles")
	assert.Contains(t, titles, "Construction Permits")
	assert.Contains(t, titles, "Archive")
	assert.Contains(t, titles, "Expiry Tracking")
	assert.Contains(t, titles, "Active Documents")
}

func TestManagerCompositionIsNarrowerThanAdmin(t *testing.T) {
	composition := Compose(models.ResolveRole("Site Manager"))
	assert.Equal(t, models.RoleManager, composition.Role)

	titles := panelTitles(composition)
	assert.Contains(t, titles, "Countries")
	assert.Contains(t, titles, "Construction Permits")
	assert.NotContains(t, titles, "Accounts")
	assert.NotContains(t, titles, "Roles")
	assert.NotContains(t, titles, "Users")
}

func TestUserComposition(t *testing.T) {
	composition := Compose(models.ResolveRole("guest"))
	assert.Equal(t, models.RoleUser, composition.Role)

	titles := panelTitles(composition)
	assert.Contains(t, titles, "Overview")
	assert.Contains(t, titles, "My Profile")
	assert.NotContains(t, titles, "Countries")

	for _, group := range composition.Groups {
		if group.Title != "My Documents" {
			continue
		}
		for _, panel := range group.Panels {
			assert.True(t, panel.ReadOnly, panel.Title)
		}
	}
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(models.RoleAdmin, resource.Accounts.Name))
	assert.True(t, Allowed(models.RoleManager, resource.Countries.Name))
	assert.False(t, Allowed(models.RoleManager, resource.Accounts.Name))
	assert.True(t, Allowed(models.RoleUser, resource.NormeLoi.Name))
	assert.False(t, Allowed(models.RoleUser, resource.Users.Name))
}

func TestStatsRefresher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dashboard/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"documents":42,"accounts":7}}`))
	}))
	t.Cleanup(server.Close)

	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(server.URL, 5*time.Second, zap.NewNop(), store)
	refresher := NewStatsRefresher(gw, time.Hour, zap.NewNop())

	refresher.Start()
	defer refresher.Stop()

	snapshot := refresher.Snapshot()
	require.NotNil(t, snapshot.Data)
	assert.Equal(t, "42", snapshot.Data.String("documents"))
	assert.False(t, snapshot.Stale)
	assert.False(t, snapshot.FetchedAt.IsZero())
}

func TestStatsRefresherMarksStaleOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(server.URL, 5*time.Second, zap.NewNop(), store)
	refresher := NewStatsRefresher(gw, time.Hour, zap.NewNop())

	refresher.Start()
	defer refresher.Stop()

	assert.True(t, refresher.Snapshot().Stale)
}
