package screen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/resource"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
	"github.com/ingenzi/console-gateway/pkg/export"
)

// State is the explicit screen state machine.
type State string

const (
	StateLoading          State = "loading"
	StateReady            State = "ready"
	StateEditing          State = "editing"
	StateConfirmingDelete State = "confirming_delete"
)

// DefaultPageSize is the page size used when the browser does not ask for one.
const DefaultPageSize = 10

// Filters holds the captured filter bar criteria.
type Filters struct {
	Select   string `json:"select,omitempty"`
	Text     string `json:"text,omitempty"`
	DateFrom string `json:"dateFrom,omitempty"`
	DateTo   string `json:"dateTo,omitempty"`
}

func (f Filters) empty() bool {
	return f.Select == "" && f.Text == "" && f.DateFrom == "" && f.DateTo == ""
}

// Snapshot is the render-ready view of a controller handed to the browser.
type Snapshot struct {
	Title           string                     `json:"title"`
	State           State                      `json:"state"`
	Schema          Schema                     `json:"schema"`
	Rows            []models.Record            `json:"rows"`
	PageIndex       int                        `json:"pageIndex"`
	TotalPages      int                        `json:"totalPages"`
	PageSize        int                        `json:"pageSize"`
	CanNext         bool                       `json:"canNext"`
	CanPrev         bool                       `json:"canPrev"`
	Options         map[string][]models.Record `json:"options"`
	Draft           models.Record              `json:"draft,omitempty"`
	EditingID       string                     `json:"editingId,omitempty"`
	PendingDeleteID string                     `json:"pendingDeleteId,omitempty"`
	Filters         Filters                    `json:"filters"`
	FilterApplied   bool                       `json:"filterApplied"`
	Message         string                     `json:"message,omitempty"`
	Warning         string                     `json:"warning,omitempty"`
}

// Controller drives one resource screen for one session: the table, the
// add/edit draft, the delete confirmation and the filter bar. All ~15 screens
// in the console are instances of this type with different schemas. Methods
// are serialised by a mutex; a screen belongs to one browser tab.
type Controller struct {
	mu     sync.Mutex
	schema Schema
	client *resource.Client
	refs   map[string]*resource.Client
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger

	state           State
	rows            []models.Record
	totalPages      int
	pageIndex       int
	pageSize        int
	options         map[string][]models.Record
	draft           models.Record
	draftFile       *resource.File
	editingID       string
	pendingDeleteID string
	filters         Filters
	filterApplied   bool
	message         string
	warning         string
}

// NewController wires a schema to its registry client and reference clients.
func NewController(schema Schema, client *resource.Client, refs map[string]*resource.Client, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		schema:   schema,
		client:   client,
		refs:     refs,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		state:    StateLoading,
		pageSize: DefaultPageSize,
		rows:     []models.Record{},
		options:  map[string][]models.Record{},
	}
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Title:           c.schema.Title,
		State:           c.state,
		Schema:          c.schema,
		Rows:            c.rows,
		PageIndex:       c.pageIndex,
		TotalPages:      c.totalPages,
		PageSize:        c.pageSize,
		CanNext:         c.pageIndex < c.totalPages-1,
		CanPrev:         c.pageIndex > 0,
		Options:         c.options,
		Draft:           c.draft,
		EditingID:       c.editingID,
		PendingDeleteID: c.pendingDeleteID,
		Filters:         c.filters,
		FilterApplied:   c.filterApplied,
		Message:         c.message,
		Warning:         c.warning,
	}
}

// Load fetches the current page and every select-option reference list
// concurrently. On failure the classified message is surfaced and the prior
// rows are kept so the table does not blank out. Expired auth is the one
// exception: the session is already gone, so the error propagates and the
// caller answers with the 401 envelope in the same interaction.
func (c *Controller) Load(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	c.state = StateLoading
	c.message = ""
	c.warning = ""
	pageIndex, pageSize := c.pageIndex, c.pageSize
	query := c.filterQueryLocked()
	c.mu.Unlock()

	var page models.Page
	loadedOptions := make(map[string][]models.Record)
	var optionsMu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		result, err := c.client.List(groupCtx, pageIndex, pageSize, query)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	for _, source := range c.schema.SelectSources() {
		ref, ok := c.refs[source]
		if !ok {
			continue
		}
		source := source
		group.Go(func() error {
			result, err := ref.List(groupCtx, 0, 200, nil)
			if err != nil {
				return err
			}
			optionsMu.Lock()
			loadedOptions[source] = result.Items
			optionsMu.Unlock()
			return nil
		})
	}

	err := group.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReady
	if err != nil {
		appErr := appErrors.FromError(err)
		c.message = appErr.Message
		c.logger.Warn("screen load failed", zap.String("screen", c.schema.Title), zap.Error(err))
		if appErr.Code == appErrors.ErrAuthExpired.Code {
			return c.snapshotLocked(), appErr
		}
		return c.snapshotLocked(), nil
	}
	c.rows = page.Items
	c.totalPages = page.TotalPages
	c.pageIndex = clampPage(page.CurrentPage, page.TotalPages)
	for source, items := range loadedOptions {
		c.options[source] = items
	}
	return c.snapshotLocked(), nil
}

// NextPage advances one page when possible.
func (c *Controller) NextPage(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	target := c.pageIndex + 1
	c.mu.Unlock()
	return c.GoToPage(ctx, target)
}

// PrevPage goes back one page when possible.
func (c *Controller) PrevPage(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	target := c.pageIndex - 1
	c.mu.Unlock()
	return c.GoToPage(ctx, target)
}

// GoToPage loads the requested page. Out-of-range requests are rejected
// before any network call.
func (c *Controller) GoToPage(ctx context.Context, page int) (Snapshot, error) {
	c.mu.Lock()
	if page < 0 || (c.totalPages > 0 && page >= c.totalPages) {
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest,
			fmt.Sprintf("page %d is out of range", page))
	}
	c.pageIndex = page
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetPageSize adjusts the page size and resets to the first page.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size > 0 && size <= 100 {
		c.pageSize = size
		c.pageIndex = 0
	}
}

// OpenAdd transitions to Editing with an empty draft.
func (c *Controller) OpenAdd() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateEditing
	c.draft = models.Record{}
	c.draftFile = nil
	c.editingID = ""
	c.message = ""
	c.warning = ""
	return c.snapshotLocked()
}

// OpenEdit transitions to Editing with a draft prefilled from the listed row,
// falling back to a fetch when the row is not on the current page.
func (c *Controller) OpenEdit(ctx context.Context, id string) (Snapshot, error) {
	c.mu.Lock()
	var prefill models.Record
	for _, row := range c.rows {
		if row.ID() == id {
			prefill = cloneRecord(row)
			break
		}
	}
	c.mu.Unlock()

	if prefill == nil {
		fetched, err := c.client.Get(ctx, id)
		if err != nil {
			c.mu.Lock()
			c.message = appErrors.FromError(err).Message
			snapshot := c.snapshotLocked()
			c.mu.Unlock()
			return snapshot, err
		}
		prefill = fetched
	}

	if c.schema.RowLocked(prefill) {
		c.mu.Lock()
		c.message = "system-managed records cannot be edited"
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, appErrors.Clone(appErrors.ErrForbidden, "system-managed records cannot be edited")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateEditing
	c.draft = prefill
	c.draftFile = nil
	c.editingID = id
	c.message = ""
	c.warning = ""
	return c.snapshotLocked(), nil
}

// SetField mutates the draft only; nothing is sent until Submit.
func (c *Controller) SetField(name string, value interface{}) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing && c.draft != nil {
		c.draft[name] = value
	}
	return c.snapshotLocked()
}

// AttachFile stages an attachment on the draft.
func (c *Controller) AttachFile(filename string, content []byte) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing {
		c.draftFile = &resource.File{Filename: filename, Content: content}
	}
	return c.snapshotLocked()
}

// Submit validates the draft and sends the create or update. Validation
// failures and upstream errors keep the screen in Editing with the draft
// preserved; success triggers a full authoritative reload of the current page.
func (c *Controller) Submit(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.state != StateEditing {
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, appErrors.New(appErrors.ErrValidation.Code, http.StatusConflict, "no form is open")
	}

	if err := c.validateDraftLocked(); err != nil {
		c.message = appErrors.FromError(err).Message
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, err
	}

	desc := c.client.Descriptor()
	payload := cloneRecord(c.draft)
	delete(payload, "document")
	file := c.draftFile
	editingID := c.editingID
	c.mu.Unlock()

	var err error
	switch {
	case editingID == "" && desc.FileBearing() && file != nil:
		_, err = c.client.CreateWithFile(ctx, payload, *file)
	case editingID == "":
		_, err = c.client.Create(ctx, payload)
	case file != nil && desc.UpdateWithFile:
		_, err = c.client.UpdateWithFile(ctx, editingID, payload, *file)
	default:
		if file != nil {
			// The registry ignores replacement files on update; say so
			// instead of silently dropping the attachment.
			c.mu.Lock()
			c.warning = fmt.Sprintf("%s does not accept a replacement file; other changes were saved", desc.Name)
			c.mu.Unlock()
		}
		_, err = c.client.Update(ctx, editingID, payload)
	}

	if err != nil {
		c.mu.Lock()
		c.state = StateEditing
		c.message = appErrors.FromError(err).Message
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, err
	}

	c.mu.Lock()
	c.draft = nil
	c.draftFile = nil
	c.editingID = ""
	c.mu.Unlock()
	return c.Load(ctx)
}

// validateDraftLocked applies required-field and attachment rules before any
// network call is made.
func (c *Controller) validateDraftLocked() error {
	missing := make([]string, 0)
	for _, field := range c.schema.RequiredFields() {
		if field.Kind == FieldFile {
			continue
		}
		value, ok := c.draft[field.Name]
		if !ok || value == nil || fmt.Sprintf("%v", value) == "" {
			missing = append(missing, field.Label)
		}
	}
	if len(missing) > 0 {
		return appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest,
			"required fields missing: "+strings.Join(missing, ", "))
	}
	if fileField := c.schema.FileField(); fileField != nil && fileField.Required {
		if c.editingID == "" && c.draftFile == nil {
			return appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest,
				"a file attachment is required")
		}
	}
	return nil
}

// RequestDelete asks for confirmation; nothing is removed yet. System-managed
// rows never enter the confirmation state.
func (c *Controller) RequestDelete(id string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range c.rows {
		if row.ID() == id && c.schema.RowLocked(row) {
			c.message = "system-managed records cannot be deleted"
			return c.snapshotLocked()
		}
	}
	if c.state == StateReady {
		c.state = StateConfirmingDelete
		c.pendingDeleteID = id
		c.message = ""
		c.warning = ""
	}
	return c.snapshotLocked()
}

// ConfirmDelete removes the pending record and reloads. The remove call only
// ever happens here, after explicit confirmation.
func (c *Controller) ConfirmDelete(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.state != StateConfirmingDelete || c.pendingDeleteID == "" {
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, appErrors.New(appErrors.ErrValidation.Code, http.StatusConflict, "no delete is pending")
	}
	id := c.pendingDeleteID
	c.mu.Unlock()

	if err := c.client.Delete(ctx, id); err != nil {
		c.mu.Lock()
		c.state = StateReady
		c.pendingDeleteID = ""
		c.message = appErrors.FromError(err).Message
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		return snapshot, err
	}

	c.mu.Lock()
	c.pendingDeleteID = ""
	c.mu.Unlock()
	return c.Load(ctx)
}

// CancelDelete returns to Ready with the list untouched.
func (c *Controller) CancelDelete() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConfirmingDelete {
		c.state = StateReady
		c.pendingDeleteID = ""
	}
	return c.snapshotLocked()
}

// Close discards the draft or pending delete and returns to Ready.
func (c *Controller) Close() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateEditing || c.state == StateConfirmingDelete {
		c.state = StateReady
		c.draft = nil
		c.draftFile = nil
		c.editingID = ""
		c.pendingDeleteID = ""
	}
	return c.snapshotLocked()
}

// SetFilters captures the filter bar criteria and reloads. Criteria are
// always captured and echoed back; they reach the list query only for
// registries with server-side filtering, and FilterApplied says which case
// this screen is in.
func (c *Controller) SetFilters(ctx context.Context, filters Filters) (Snapshot, error) {
	c.mu.Lock()
	c.filters = filters
	c.filterApplied = c.client.Descriptor().Filterable && !filters.empty()
	c.pageIndex = 0
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Controller) filterQueryLocked() url.Values {
	query := url.Values{}
	if c.schema.Filter == nil || c.filters.empty() {
		return query
	}
	if c.schema.Filter.TextField != "" && c.filters.Text != "" {
		query.Set(c.schema.Filter.TextField, c.filters.Text)
	}
	if c.schema.Filter.SelectField != "" && c.filters.Select != "" {
		query.Set(c.schema.Filter.SelectField, c.filters.Select)
	}
	if c.schema.Filter.DateRange {
		if c.filters.DateFrom != "" {
			query.Set("from", c.filters.DateFrom)
		}
		if c.filters.DateTo != "" {
			query.Set("to", c.filters.DateTo)
		}
	}
	return query
}

// Export renders the current page as CSV or PDF.
func (c *Controller) Export(format string) ([]byte, string, error) {
	c.mu.Lock()
	columns := c.schema.TableColumns()
	dataset := export.Dataset{
		Headers: make([]string, 0, len(columns)),
		Rows:    make([]map[string]string, 0, len(c.rows)),
	}
	for _, column := range columns {
		dataset.Headers = append(dataset.Headers, column.Label)
	}
	for _, row := range c.rows {
		rendered := make(map[string]string, len(columns))
		for _, column := range columns {
			rendered[column.Label] = row.String(column.Name)
		}
		dataset.Rows = append(dataset.Rows, rendered)
	}
	title := c.schema.Title
	c.mu.Unlock()

	stamp := time.Now().Format("20060102-150405")
	switch format {
	case "csv":
		data, err := c.csv.Render(dataset)
		if err != nil {
			return nil, "", err
		}
		return data, fmt.Sprintf("%s-%s.csv", slug(title), stamp), nil
	case "pdf":
		data, err := c.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", err
		}
		return data, fmt.Sprintf("%s-%s.pdf", slug(title), stamp), nil
	default:
		return nil, "", appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest,
			fmt.Sprintf("unsupported export format %q", format))
	}
}

func clampPage(page, totalPages int) int {
	if page < 0 {
		return 0
	}
	if totalPages > 0 && page >= totalPages {
		return totalPages - 1
	}
	return page
}

func cloneRecord(record models.Record) models.Record {
	clone := make(models.Record, len(record))
	for key, value := range record {
		clone[key] = value
	}
	return clone
}

func slug(title string) string {
	lowered := strings.ToLower(title)
	return strings.ReplaceAll(lowered, " ", "-")
}
