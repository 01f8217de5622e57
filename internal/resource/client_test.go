package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/session"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
)

func newRegistryClient(t *testing.T, desc Descriptor, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store := session.NewMemoryStore(time.Minute)
	gw := gateway.New(server.URL, 5*time.Second, zap.NewNop(), store)
	return NewClient(desc, gw)
}

func TestListPaginated(t *testing.T) {
	client := newRegistryClient(t, Countries, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/countries", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("size"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"items":[{"id":1,"name":"Rwanda"}],"totalPages":5,"currentPageIndex":2}}`))
	})

	page, err := client.List(context.Background(), 2, 20, nil)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "Rwanda", page.Items[0].String("name"))
	assert.Equal(t, 5, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
}

func TestListUnpaginatedNormalisesToSinglePage(t *testing.T) {
	client := newRegistryClient(t, DocStatuses, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`[{"id":1,"name":"Approved"},{"id":2,"name":"Pending"}]`))
	})

	page, err := client.List(context.Background(), 0, 10, nil)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.CurrentPage)
}

func TestListAppliesFiltersOnlyWhenFilterable(t *testing.T) {
	filters := url.Values{"name": {"kigali"}}

	filterable := newRegistryClient(t, Countries, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kigali", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"items":[],"totalPages":0,"currentPageIndex":0}`))
	})
	_, err := filterable.List(context.Background(), 0, 10, filters)
	require.NoError(t, err)

	unfilterable := newRegistryClient(t, Roles, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`{"items":[],"totalPages":0,"currentPageIndex":0}`))
	})
	_, err = unfilterable.List(context.Background(), 0, 10, filters)
	require.NoError(t, err)
}

func TestCreateAndUpdateJSON(t *testing.T) {
	client := newRegistryClient(t, LocationEntities, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Kigali", payload["name"])

		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/api/location-entities", r.URL.Path)
			_, _ = w.Write([]byte(`{"data":{"id":9,"name":"Kigali","countryId":1}}`))
		case http.MethodPut:
			assert.Equal(t, "/api/location-entities/9", r.URL.Path)
			_, _ = w.Write([]byte(`{"data":{"id":9,"name":"Kigali","countryId":2}}`))
		}
	})

	created, err := client.Create(context.Background(), models.Record{"name": "Kigali", "countryId": 1})
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID())

	updated, err := client.Update(context.Background(), "9", models.Record{"name": "Kigali", "countryId": 2})
	require.NoError(t, err)
	assert.Equal(t, "2", updated.String("countryId"))
}

func TestDelete(t *testing.T) {
	client := newRegistryClient(t, Sections, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/sections/4", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Delete(context.Background(), "4"))
}

func TestCreateWithFileFlattened(t *testing.T) {
	client := newRegistryClient(t, PermiConstruction, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "PC-2025-001", r.FormValue("permitNumber"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close() //nolint:errcheck
		assert.Equal(t, "permit.pdf", header.Filename)

		_, _ = w.Write([]byte(`{"data":{"id":12,"permitNumber":"PC-2025-001"}}`))
	})

	record, err := client.CreateWithFile(context.Background(),
		models.Record{"permitNumber": "PC-2025-001"},
		File{Filename: "permit.pdf", Content: []byte("%PDF-1.4")},
	)
	require.NoError(t, err)
	assert.Equal(t, "12", record.ID())
}

func TestCreateWithFileJSONField(t *testing.T) {
	client := newRegistryClient(t, NormeLoi, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var metadata map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("normeLoi")), &metadata))
		assert.Equal(t, "Law 32/2025", metadata["title"])

		_, _ = w.Write([]byte(`{"data":{"id":3,"title":"Law 32/2025"}}`))
	})

	record, err := client.CreateWithFile(context.Background(),
		models.Record{"title": "Law 32/2025"},
		File{Filename: "law.pdf", Content: []byte("%PDF-1.4")},
	)
	require.NoError(t, err)
	assert.Equal(t, "3", record.ID())
}

func TestUpdateWithFileRejectedWhenUnsupported(t *testing.T) {
	client := newRegistryClient(t, CommAssetLand, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no upstream call expected")
	})

	_, err := client.UpdateWithFile(context.Background(), "5",
		models.Record{"parcel": "K-102"},
		File{Filename: "deed.pdf", Content: []byte("%PDF-1.4")},
	)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCatalogueCoversEveryRegistry(t *testing.T) {
	catalogue := Catalogue()
	assert.Len(t, catalogue, 19)
	assert.Len(t, DocumentRegistries(), 9)
	assert.Len(t, LocationRegistries(), 4)

	for name, desc := range catalogue {
		assert.Equal(t, name, desc.Name)
		assert.NotEmpty(t, desc.Path)
		if desc.Shape == MultipartJSONField {
			assert.NotEmpty(t, desc.JSONField, name)
		}
	}
}
