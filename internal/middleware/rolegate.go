package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/shell"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
	"github.com/ingenzi/console-gateway/pkg/response"
)

// RequireRole allows only the listed roles past. Runs after Session.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ScreenGate blocks screen routes whose registry is not part of the caller's
// dashboard composition. The upstream API still enforces authorization on its
// side; this keeps a User session from driving an Admin screen through this
// gateway at all.
func ScreenGate(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		registry := c.Param(param)
		if !shell.Allowed(principal.Role, registry) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
