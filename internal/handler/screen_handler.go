package handler

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/middleware"
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/screen"
	"github.com/ingenzi/console-gateway/internal/service"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
	"github.com/ingenzi/console-gateway/pkg/response"
	"github.com/ingenzi/console-gateway/pkg/storage"
)

// maxAttachmentBytes caps uploaded attachment size.
const maxAttachmentBytes = 25 << 20

// ScreenHandler exposes the generic resource screens over HTTP. Every route
// is (session, registry)-scoped; the controller holds the state machine and
// this handler only translates requests into controller calls.
type ScreenHandler struct {
	screens *screen.Manager
	metrics *service.MetricsService
	audit   *service.AuditService
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
}

// NewScreenHandler wires the screen surface.
func NewScreenHandler(screens *screen.Manager, metrics *service.MetricsService, audit *service.AuditService, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ScreenHandler {
	return &ScreenHandler{
		screens: screens,
		metrics: metrics,
		audit:   audit,
		store:   store,
		signer:  signer,
		logger:  logger,
	}
}

func (h *ScreenHandler) controller(c *gin.Context) (*screen.Controller, string, bool) {
	registry := c.Param("registry")
	controller, err := h.screens.Enter(middleware.SessionIDFrom(c), registry)
	if err != nil {
		response.Error(c, err)
		return nil, registry, false
	}
	return controller, registry, true
}

// Enter godoc
// @Summary Mount a screen and load its first page
// @Tags screens
// @Produce json
// @Param registry path string true "registry name"
// @Success 200 {object} response.Envelope
// @Router /screens/{registry} [get]
func (h *ScreenHandler) Enter(c *gin.Context) {
	controller, registry, ok := h.controller(c)
	if !ok {
		return
	}
	h.metrics.RecordScreenAction(registry, "enter")
	snapshot, err := controller.Load(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Leave unmounts the screen, discarding its state.
func (h *ScreenHandler) Leave(c *gin.Context) {
	registry := c.Param("registry")
	h.screens.Leave(middleware.SessionIDFrom(c), registry)
	h.metrics.RecordScreenAction(registry, "leave")
	response.NoContent(c)
}

// GoToPage moves to the requested page; "next" and "prev" are accepted as
// relative targets.
func (h *ScreenHandler) GoToPage(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}

	var req struct {
		Page   *int   `json:"page"`
		Target string `json:"target"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page or target required"))
		return
	}

	var snapshot screen.Snapshot
	var err error
	switch {
	case req.Page != nil:
		snapshot, err = controller.GoToPage(c.Request.Context(), *req.Page)
	case req.Target == "next":
		snapshot, err = controller.NextPage(c.Request.Context())
	case req.Target == "prev":
		snapshot, err = controller.PrevPage(c.Request.Context())
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page or target required"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// OpenAdd opens an empty draft form.
func (h *ScreenHandler) OpenAdd(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, controller.OpenAdd(), nil)
}

// OpenEdit opens a draft prefilled from the identified record.
func (h *ScreenHandler) OpenEdit(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}
	snapshot, err := controller.OpenEdit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// SetField mutates one draft field.
func (h *ScreenHandler) SetField(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}
	var req struct {
		Name  string      `json:"name" binding:"required"`
		Value interface{} `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "field name required"))
		return
	}
	response.JSON(c, http.StatusOK, controller.SetField(req.Name, req.Value), nil)
}

// AttachFile stages a multipart attachment on the draft.
func (h *ScreenHandler) AttachFile(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a file part named \"file\" is required"))
		return
	}
	if fileHeader.Size > maxAttachmentBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the 25MB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "read attachment"))
		return
	}
	defer file.Close() //nolint:errcheck

	content, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "read attachment"))
		return
	}

	response.JSON(c, http.StatusOK, controller.AttachFile(fileHeader.Filename, content), nil)
}

// Submit validates and sends the draft.
func (h *ScreenHandler) Submit(c *gin.Context) {
	controller, registry, ok := h.controller(c)
	if !ok {
		return
	}
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	editingID := controller.Snapshot().EditingID
	snapshot, err := controller.Submit(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordScreenAction(registry, "submit")
	ip, userAgent := clientMeta(c)
	h.audit.RecordAction(principal.Username, models.AuditActionScreenSubmit, registry, editingID, ip, userAgent, nil)
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// RequestDelete asks for delete confirmation.
func (h *ScreenHandler) RequestDelete(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, controller.RequestDelete(c.Param("id")), nil)
}

// ConfirmDelete performs the pending delete.
func (h *ScreenHandler) ConfirmDelete(c *gin.Context) {
	controller, registry, ok := h.controller(c)
	if !ok {
		return
	}
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	pendingID := controller.Snapshot().PendingDeleteID
	snapshot, err := controller.ConfirmDelete(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordScreenAction(registry, "delete")
	ip, userAgent := clientMeta(c)
	h.audit.RecordAction(principal.Username, models.AuditActionScreenDelete, registry, pendingID, ip, userAgent, nil)
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// CancelDelete dismisses the confirmation.
func (h *ScreenHandler) CancelDelete(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, controller.CancelDelete(), nil)
}

// Close discards the open draft or confirmation.
func (h *ScreenHandler) Close(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, controller.Close(), nil)
}

// SetFilters captures the filter bar criteria and reloads.
func (h *ScreenHandler) SetFilters(c *gin.Context) {
	controller, _, ok := h.controller(c)
	if !ok {
		return
	}
	var filters screen.Filters
	if err := c.ShouldBindJSON(&filters); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid filter payload"))
		return
	}
	snapshot, err := controller.SetFilters(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Export renders the current page to CSV or PDF, stores the file and hands
// back a signed, time-limited download link.
func (h *ScreenHandler) Export(c *gin.Context) {
	controller, registry, ok := h.controller(c)
	if !ok {
		return
	}
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "csv")
	data, filename, err := controller.Export(format)
	if err != nil {
		response.Error(c, err)
		return
	}

	exportID := uuid.NewString()
	relPath := path.Join("screens", registry, exportID+"-"+filename)
	if _, err := h.store.Save(relPath, data); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "store export"))
		return
	}
	token, expiresAt, err := h.signer.Generate(exportID, relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "sign export link"))
		return
	}

	h.metrics.RecordScreenAction(registry, "export")
	ip, userAgent := clientMeta(c)
	h.audit.RecordAction(principal.Username, models.AuditActionScreenExport, registry, exportID, ip, userAgent, gin.H{"format": format})

	response.JSON(c, http.StatusOK, gin.H{
		"filename":    filename,
		"downloadUrl": fmt.Sprintf("/api/v1/exports/download?token=%s", token),
		"expiresAt":   expiresAt,
	}, nil)
}

// DownloadExport streams a previously generated export. The signed token is
// the only credential; no session is required so the link works in a plain
// browser tab.
func (h *ScreenHandler) DownloadExport(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "download link is invalid or expired"))
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(relPath, ".csv"):
		contentType = "text/csv"
	case strings.HasSuffix(relPath, ".pdf"):
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(relPath)))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		h.logger.Warn("stream export", zap.Error(err))
	}
}
