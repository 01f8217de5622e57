package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/session"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
	"github.com/ingenzi/console-gateway/pkg/response"
)

const (
	// SessionHeader carries the session handle for non-cookie clients.
	SessionHeader = "X-Session-ID"

	principalKey = "principal"
	sessionIDKey = "session_id"
)

// Session resolves the browser session (cookie or header), hydrates the
// principal and threads it onto the request context for the gateway. Missing
// or expired sessions get a 401 envelope.
func Session(store session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				sessionID = cookie
			}
		}
		if sessionID == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		principal, err := store.Hydrate(c.Request.Context(), sessionID)
		if err != nil || !principal.Authenticated() {
			response.Error(c, appErrors.ErrAuthExpired)
			c.Abort()
			return
		}

		c.Set(sessionIDKey, sessionID)
		c.Set(principalKey, principal)
		c.Request = c.Request.WithContext(gateway.WithCaller(c.Request.Context(), sessionID, principal))
		c.Next()
	}
}

// PrincipalFrom returns the hydrated principal for the current request.
func PrincipalFrom(c *gin.Context) (*models.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*models.Principal)
	return principal, ok
}

// SessionIDFrom returns the resolved session handle.
func SessionIDFrom(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
