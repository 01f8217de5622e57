package screen

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/resource"
	"github.com/ingenzi/console-gateway/internal/session"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
)

type fakeUpstream struct {
	server      *httptest.Server
	listCalls   atomic.Int64
	deleteCalls atomic.Int64
	createCalls atomic.Int64
	failCreate  atomic.Bool
}

// newFakeUpstream serves a three-page country list plus the delete and create
// endpoints the controller exercises.
func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	upstream := &fakeUpstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/countries", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			upstream.listCalls.Add(1)
			page := r.URL.Query().Get("page")
			if page == "" {
				page = "0"
			}
			fmt.Fprintf(w, `{"data":{"items":[{"id":"c%s","name":"Country %s"}],"totalPages":3,"currentPageIndex":%s}}`, page, page, page)
		case http.MethodPost:
			upstream.createCalls.Add(1)
			if upstream.failCreate.Load() {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"message":"name already taken"}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":{"id":99,"name":"Burundi"}}`))
		}
	})
	mux.HandleFunc("/api/countries/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			upstream.deleteCalls.Add(1)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	upstream.server = httptest.NewServer(mux)
	t.Cleanup(upstream.server.Close)
	return upstream
}

func newCountryController(t *testing.T, upstream *fakeUpstream) *Controller {
	t.Helper()
	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(upstream.server.URL, 5*time.Second, zap.NewNop(), store)
	schema := Schemas()[resource.Countries.Name]
	return NewController(schema, resource.NewClient(resource.Countries, gw), nil, zap.NewNop())
}

func TestLoadPopulatesTable(t *testing.T) {
	upstream := newFakeUpstream(t)
	controller := newCountryController(t, upstream)

	snapshot, err := controller.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, snapshot.State)
	require.Len(t, snapshot.Rows, 1)
	assert.Equal(t, "Country 0", snapshot.Rows[0].String("name"))
	assert.Equal(t, 3, snapshot.TotalPages)
	assert.True(t, snapshot.CanNext)
	assert.False(t, snapshot.CanPrev)
}

func TestPaginationBoundaries(t *testing.T) {
	upstream := newFakeUpstream(t)
	controller := newCountryController(t, upstream)
	ctx := context.Background()
	controller.Load(ctx)

	snapshot, err := controller.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.PageIndex)

	snapshot, err = controller.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.PageIndex)
	assert.False(t, snapshot.CanNext)

	calls := upstream.listCalls.Load()
	_, err = controller.NextPage(ctx)
	require.Error(t, err)
	// An out-of-range request never reaches the network.
	assert.Equal(t, calls, upstream.listCalls.Load())

	_, err = controller.GoToPage(ctx, -1)
	require.Error(t, err)
	assert.Equal(t, calls, upstream.listCalls.Load())
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	upstream := newFakeUpstream(t)
	controller := newCountryController(t, upstream)
	ctx := context.Background()
	controller.Load(ctx)

	snapshot := controller.RequestDelete("c0")
	assert.Equal(t, StateConfirmingDelete, snapshot.State)
	assert.Equal(t, "c0", snapshot.PendingDeleteID)
	assert.Zero(t, upstream.deleteCalls.Load())

	snapshot = controller.CancelDelete()
	assert.Equal(t, StateReady, snapshot.State)
	assert.Empty(t, snapshot.PendingDeleteID)
	assert.Zero(t, upstream.deleteCalls.Load())

	controller.RequestDelete("c0")
	snapshot, err := controller.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateReady, snapshot.State)
	assert.Equal(t, int64(1), upstream.deleteCalls.Load())
}

func TestConfirmDeleteWithoutRequestRejected(t *testing.T) {
	upstream := newFakeUpstream(t)
	controller := newCountryController(t, upstream)
	controller.Load(context.Background())

	_, err := controller.ConfirmDelete(context.Background())
	require.Error(t, err)
	assert.Zero(t, upstream.deleteCalls.Load())
}

func TestSubmitValidationBlocksBeforeNetwork(t *testing.T) {
	upstream := newFakeUpstream(t)
	controller := newCountryController(t, upstream)
	ctx := context.Background()
	controller.Load(ctx)

	controller.OpenAdd()
	snapshot, err := controller.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, StateEditing, snapshot.State)
	assert.Contains(t, snapshot.Message, "Country Name")
	assert.Zero(t, upstream.createCalls.Load())
}

func TestSubmitSuccessReloads(t *testing.T) {
	upstream := newFakeUpstream(t)
	controller := newCountryController(t, upstream)
	ctx := context.Background()
	controller.Load(ctx)
	listCalls := upstream.listCalls.Load()

	controller.OpenAdd()
	controller.SetField("name", "Burundi")
	snapshot, err := controller.Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateReady, snapshot.State)
	assert.Empty(t, snapshot.Draft)
	assert.Equal(t, int64(1), upstream.createCalls.Load())
	// Success triggers a full reload of the current page.
	assert.Equal(t, listCalls+1, upstream.listCalls.Load())
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	upstream := newFakeUpstream(t)
	upstream.failCreate.Store(true)
	controller := newCountryController(t, upstream)
	ctx := context.Background()
	controller.Load(ctx)

	controller.OpenAdd()
	controller.SetField("name", "Burundi")
	snapshot, err := controller.Submit(ctx)
	require.Error(t, err)

	assert.Equal(t, StateEditing, snapshot.State)
	assert.Equal(t, "Burundi", snapshot.Draft.String("name"))
	assert.Equal(t, "name already taken", snapshot.Message)
}

func TestFileRequiredBeforeNetwork(t *testing.T) {
	upstream := newFakeUpstream(t)
	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(upstream.server.URL, 5*time.Second, zap.NewNop(), store)
	schema := Schemas()[resource.PermiConstruction.Name]
	controller := NewController(schema, resource.NewClient(resource.PermiConstruction, gw), nil, zap.NewNop())

	controller.OpenAdd()
	controller.SetField("permitNumber", "PC-1")
	controller.SetField("doneById", "4")
	controller.SetField("statusId", "1")

	snapshot, err := controller.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateEditing, snapshot.State)
	assert.Equal(t, "a file attachment is required", snapshot.Message)
	assert.Zero(t, upstream.createCalls.Load())
}

func TestFilterCaptureWithoutServerSideApply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"data":{"items":[],"totalPages":1,"currentPageIndex":0}}`))
	}))
	t.Cleanup(server.Close)

	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(server.URL, 5*time.Second, zap.NewNop(), store)
	schema := Schema{
		Title:  "Roles",
		Fields: []Field{{Name: "name", Label: "Role Name", Kind: FieldText, Required: true}},
		Filter: &FilterBar{TextField: "name"},
	}
	controller := NewController(schema, resource.NewClient(resource.Roles, gw), nil, zap.NewNop())

	snapshot, err := controller.SetFilters(context.Background(), Filters{Text: "admin"})
	require.NoError(t, err)
	// Criteria are echoed back but flagged as not applied server-side.
	assert.Equal(t, "admin", snapshot.Filters.Text)
	assert.False(t, snapshot.FilterApplied)
}

func TestFilterAppliedForFilterableRegistry(t *testing.T) {
	var sawFilter atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "rwanda" {
			sawFilter.Store(true)
		}
		_, _ = w.Write([]byte(`{"data":{"items":[],"totalPages":1,"currentPageIndex":0}}`))
	}))
	t.Cleanup(server.Close)

	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(server.URL, 5*time.Second, zap.NewNop(), store)
	schema := Schemas()[resource.Countries.Name]
	controller := NewController(schema, resource.NewClient(resource.Countries, gw), nil, zap.NewNop())

	snapshot, err := controller.SetFilters(context.Background(), Filters{Text: "rwanda"})
	require.NoError(t, err)
	assert.True(t, snapshot.FilterApplied)
	assert.True(t, sawFilter.Load())
}

func TestExportCSV(t *testing.T) {
	upstream := newFakeUpstream(t)
	controller := newCountryController(t, upstream)
	controller.Load(context.Background())

	data, filename, err := controller.Export("csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "countries-"))
	assert.Contains(t, string(data), "Country Name")
	assert.Contains(t, string(data), "Country 0")

	_, _, err = controller.Export("xlsx")
	require.Error(t, err)
}

func TestCloseDiscardsDraft(t *testing.T) {
	upstream := newFakeUpstream(t)
	controller := newCountryController(t, upstream)
	controller.Load(context.Background())

	controller.OpenAdd()
	controller.SetField("name", "Burundi")
	snapshot := controller.Close()

	assert.Equal(t, StateReady, snapshot.State)
	assert.Empty(t, snapshot.Draft)
	assert.Empty(t, snapshot.EditingID)
}

func TestSystemRoleRowsCannotBeEditedOrDeleted(t *testing.T) {
	var deleteCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/roles", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"items":[` +
			`{"id":"1","name":"Administrator","isSystemRole":true},` +
			`{"id":"2","name":"Clerk","isSystemRole":false}` +
			`],"totalPages":1,"currentPageIndex":0}}`))
	})
	mux.HandleFunc("/api/roles/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleteCalls.Add(1)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(server.URL, 5*time.Second, zap.NewNop(), store)
	schema := Schemas()[resource.Roles.Name]
	controller := NewController(schema, resource.NewClient(resource.Roles, gw), nil, zap.NewNop())
	ctx := context.Background()

	_, err := controller.Load(ctx)
	require.NoError(t, err)

	snapshot, err := controller.OpenEdit(ctx, "1")
	require.Error(t, err)
	assert.Equal(t, StateReady, snapshot.State)
	assert.Contains(t, snapshot.Message, "cannot be edited")

	snapshot = controller.RequestDelete("1")
	assert.Equal(t, StateReady, snapshot.State)
	assert.Empty(t, snapshot.PendingDeleteID)
	assert.Contains(t, snapshot.Message, "cannot be deleted")

	_, err = controller.ConfirmDelete(ctx)
	require.Error(t, err)
	assert.Zero(t, deleteCalls.Load())

	// Ordinary roles stay editable.
	snapshot, err = controller.OpenEdit(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, StateEditing, snapshot.State)
	assert.Equal(t, "Clerk", snapshot.Draft.String("name"))
}

func TestLoadPropagatesExpiredAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(server.URL, 5*time.Second, zap.NewNop(), store)
	schema := Schemas()[resource.Countries.Name]
	controller := NewController(schema, resource.NewClient(resource.Countries, gw), nil, zap.NewNop())

	_, err := controller.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAuthExpired.Code, appErrors.FromError(err).Code)
}

func TestManagerLifecycle(t *testing.T) {
	upstream := newFakeUpstream(t)
	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(upstream.server.URL, 5*time.Second, zap.NewNop(), store)
	manager := NewManager(gw, zap.NewNop())

	first, err := manager.Enter("sess-1", resource.Countries.Name)
	require.NoError(t, err)
	again, err := manager.Enter("sess-1", resource.Countries.Name)
	require.NoError(t, err)
	assert.Same(t, first, again)

	other, err := manager.Enter("sess-2", resource.Countries.Name)
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	_, err = manager.Enter("sess-1", "no-such-screen")
	require.Error(t, err)

	manager.Leave("sess-1", resource.Countries.Name)
	_, mounted := manager.Lookup("sess-1", resource.Countries.Name)
	assert.False(t, mounted)

	manager.DropSession("sess-2")
	_, mounted = manager.Lookup("sess-2", resource.Countries.Name)
	assert.False(t, mounted)
}
