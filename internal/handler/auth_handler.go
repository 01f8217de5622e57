package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/middleware"
	"github.com/ingenzi/console-gateway/internal/models"
	"github.com/ingenzi/console-gateway/internal/screen"
	"github.com/ingenzi/console-gateway/internal/service"
	"github.com/ingenzi/console-gateway/internal/session"
	"github.com/ingenzi/console-gateway/internal/shell"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
	"github.com/ingenzi/console-gateway/pkg/response"
)

// AuthHandler owns the sign-in surface: login, logout, password change and
// the principal snapshot.
type AuthHandler struct {
	gw           *gateway.Client
	store        session.Store
	screens      *screen.Manager
	metrics      *service.MetricsService
	audit        *service.AuditService
	validate     *validator.Validate
	logger       *zap.Logger
	cookieName   string
	cookieSecure bool
	sessionTTL   time.Duration
}

// NewAuthHandler wires the auth surface.
func NewAuthHandler(gw *gateway.Client, store session.Store, screens *screen.Manager, metrics *service.MetricsService, audit *service.AuditService, logger *zap.Logger, cookieName string, cookieSecure bool, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		gw:           gw,
		store:        store,
		screens:      screens,
		metrics:      metrics,
		audit:        audit,
		validate:     validator.New(),
		logger:       logger,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
	}
}

// Login godoc
// @Summary Sign in and open a console session
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "username and password are required"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "username and password are required"))
		return
	}

	var result models.UpstreamLoginResult
	err := h.gw.Do(c.Request.Context(), http.MethodPost, "/api/auth/login", map[string]string{
		"username": req.Username,
		"password": req.Password,
	}, &result)
	if err != nil {
		appErr := appErrors.FromError(err)
		// Upstream answers bad credentials with 401; that is not an expired
		// console session, so remap before it reaches the browser.
		if appErr.Code == appErrors.ErrAuthExpired.Code {
			appErr = appErrors.Clone(appErrors.ErrUnauthorized, "invalid username or password")
		}
		h.logger.Info("login rejected", zap.String("username", req.Username), zap.String("code", appErr.Code))
		response.Error(c, appErr)
		return
	}
	if result.Token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUpstream, "login response carried no token"))
		return
	}

	principal := &models.Principal{
		Username:     result.User.Username,
		FullName:     result.User.FullName,
		Email:        result.User.Email,
		RoleLabel:    result.User.Role,
		Role:         models.ResolveRole(result.User.Role),
		AccessToken:  result.Token,
		RefreshToken: result.RefreshToken,
		IssuedAt:     time.Now().UTC(),
	}
	if principal.Username == "" {
		principal.Username = req.Username
	}

	sessionID := session.NewSessionID()
	if err := h.store.Put(c.Request.Context(), sessionID, principal); err != nil {
		h.logger.Error("persist session", zap.Error(err))
		response.Error(c, appErrors.ErrInternal)
		return
	}

	// The upstream token, not the console, decides how long a session can
	// stay useful. Cap the cookie when the token expires sooner.
	maxAge := int(h.sessionTTL.Seconds())
	if exp, ok := session.TokenExpiry(result.Token); ok {
		if remaining := time.Until(exp); remaining > 0 && remaining < h.sessionTTL {
			maxAge = int(remaining.Seconds())
		}
	}

	h.setCookie(c, sessionID, maxAge)
	h.metrics.SessionOpened()
	ip, userAgent := clientMeta(c)
	h.audit.RecordAction(principal.Username, models.AuditActionLogin, "session", "", ip, userAgent, nil)
	h.logger.Info("login", zap.String("username", principal.Username), zap.String("role", string(principal.Role)))

	response.JSON(c, http.StatusOK, gin.H{
		"sessionId": sessionID,
		"principal": sanitise(principal),
		"dashboard": shell.Compose(principal.Role),
	}, nil)
}

// Logout godoc
// @Summary Close the console session
// @Tags auth
// @Produce json
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	sessionID := middleware.SessionIDFrom(c)

	// Best effort; the console session dies regardless of the upstream answer.
	if err := h.gw.Do(c.Request.Context(), http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		h.logger.Debug("upstream logout failed", zap.Error(err))
	}

	if err := h.store.Clear(c.Request.Context(), sessionID); err != nil {
		h.logger.Warn("clear session", zap.Error(err))
	}
	h.screens.DropSession(sessionID)
	h.metrics.SessionClosed()
	h.setCookie(c, "", -1)

	ip, userAgent := clientMeta(c)
	h.audit.RecordAction(principal.Username, models.AuditActionLogout, "session", "", ip, userAgent, nil)
	response.NoContent(c)
}

// ChangePassword godoc
// @Summary Change the account password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "passwords"
// @Success 204
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "old and new password are required"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "new password must be at least 6 characters"))
		return
	}

	if err := h.gw.Do(c.Request.Context(), http.MethodPost, "/api/auth/change-password", req, nil); err != nil {
		response.Error(c, err)
		return
	}

	ip, userAgent := clientMeta(c)
	h.audit.RecordAction(principal.Username, models.AuditActionPasswordChange, "account", "", ip, userAgent, nil)
	response.NoContent(c)
}

// Me godoc
// @Summary Current principal snapshot
// @Tags auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, sanitise(principal), nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, value, maxAge, "/", "", h.cookieSecure, true)
}

// sanitise strips tokens before a principal leaves the gateway.
func sanitise(principal *models.Principal) gin.H {
	return gin.H{
		"username":  principal.Username,
		"fullName":  principal.FullName,
		"email":     principal.Email,
		"roleLabel": principal.RoleLabel,
		"role":      principal.Role,
		"issuedAt":  principal.IssuedAt,
	}
}
