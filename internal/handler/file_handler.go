package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/resource"
	"github.com/ingenzi/console-gateway/internal/service"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
	"github.com/ingenzi/console-gateway/pkg/response"
)

// FileHandler preserves the two-step document download: metadata by id first
// to learn the storage path, then the binary from the path-based endpoint.
type FileHandler struct {
	gw     *gateway.Client
	audit  *service.AuditService
	logger *zap.Logger
}

// NewFileHandler wires the file surface.
func NewFileHandler(gw *gateway.Client, audit *service.AuditService, logger *zap.Logger) *FileHandler {
	return &FileHandler{gw: gw, audit: audit, logger: logger}
}

// Metadata godoc
// @Summary File metadata by id
// @Tags files
// @Produce json
// @Param id path string true "file id"
// @Success 200 {object} response.Envelope
// @Router /files/{id} [get]
func (h *FileHandler) Metadata(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}
	id := c.Param("id")

	var metadata models.Record
	path := fmt.Sprintf("%s/%s", resource.FilesPath, url.PathEscape(id))
	if err := h.gw.Do(c.Request.Context(), http.MethodGet, path, nil, &metadata); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metadata, nil)
}

// Download godoc
// @Summary Stream a file binary by storage path
// @Tags files
// @Produce octet-stream
// @Param path path string true "storage path"
// @Success 200
// @Router /files/download/{path} [get]
func (h *FileHandler) Download(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	storagePath := strings.TrimPrefix(c.Param("path"), "/")
	if storagePath == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file path required"))
		return
	}

	upstreamPath := resource.FilesDownloadPath + "/" + storagePath
	body, contentType, filename, err := h.gw.Download(c.Request.Context(), upstreamPath)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer body.Close() //nolint:errcheck

	if filename == "" {
		segments := strings.Split(storagePath, "/")
		filename = segments[len(segments)-1]
	}

	ip, userAgent := clientMeta(c)
	h.audit.RecordAction(principal.Username, models.AuditActionFileDownload, "files", storagePath, ip, userAgent, nil)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		h.logger.Warn("stream file", zap.Error(err))
	}
}
