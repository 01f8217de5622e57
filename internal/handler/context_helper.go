package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ingenzi/console-gateway/internal/middleware"
	"github.com/ingenzi/console-gateway/internal/models"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
	"github.com/ingenzi/console-gateway/pkg/response"
)

// requirePrincipal fetches the hydrated principal or writes a 401 envelope.
func requirePrincipal(c *gin.Context) (*models.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return principal, true
}

// clientMeta extracts the caller network metadata for the audit trail.
func clientMeta(c *gin.Context) (ip, userAgent string) {
	return c.ClientIP(), c.Request.UserAgent()
}
