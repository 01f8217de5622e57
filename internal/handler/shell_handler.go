package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ingenzi/console-gateway/internal/shell"
	"github.com/ingenzi/console-gateway/pkg/response"
)

// ShellHandler serves the role-resolved dashboard composition and the cached
// statistics panel.
type ShellHandler struct {
	stats *shell.StatsRefresher
}

// NewShellHandler wires the dashboard surface.
func NewShellHandler(stats *shell.StatsRefresher) *ShellHandler {
	return &ShellHandler{stats: stats}
}

// Composition godoc
// @Summary Dashboard composition for the caller's role
// @Tags shell
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shell [get]
func (h *ShellHandler) Composition(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, shell.Compose(principal.Role), nil)
}

// Stats godoc
// @Summary Dashboard statistics panel
// @Tags shell
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shell/stats [get]
func (h *ShellHandler) Stats(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}

	snapshot := h.stats.Snapshot()
	if snapshot.Data == nil {
		// Cache not warm yet: fetch once on behalf of this session.
		data, err := h.stats.Fetch(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"data": data, "stale": false}, nil)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}
