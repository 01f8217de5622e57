package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/service"
	"github.com/ingenzi/console-gateway/pkg/response"
)

// AuditReader lists action trail entries for the admin surface.
type AuditReader interface {
	ListRecent(ctx context.Context, username string, limit int) ([]models.AuditLog, error)
}

// AdminHandler serves the gateway's own operational surface: metrics
// snapshots and the console action trail. Admin role only.
type AdminHandler struct {
	metrics *service.MetricsService
	trail   AuditReader
}

// NewAdminHandler wires the admin surface.
func NewAdminHandler(metrics *service.MetricsService, trail AuditReader) *AdminHandler {
	return &AdminHandler{metrics: metrics, trail: trail}
}

// Metrics godoc
// @Summary Aggregated gateway metrics
// @Tags admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/metrics [get]
func (h *AdminHandler) Metrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// AuditTrail godoc
// @Summary Recent console actions
// @Tags admin
// @Produce json
// @Param username query string false "scope to one user"
// @Param limit query int false "max entries"
// @Success 200 {object} response.Envelope
// @Router /admin/audit [get]
func (h *AdminHandler) AuditTrail(c *gin.Context) {
	if h.trail == nil {
		response.JSON(c, http.StatusOK, []models.AuditLog{}, nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.trail.ListRecent(c.Request.Context(), c.Query("username"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
