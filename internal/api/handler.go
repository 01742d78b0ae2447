package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"machine-maintenance-backend/config"
	"machine-maintenance-backend/internal/auth"
	"machine-maintenance-backend/internal/intake"
	"machine-maintenance-backend/internal/store"
)

const (
	sessionCookie = "session"
	flashCookie   = "qr_flash"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	gateway *intake.Gateway
	auth    *auth.Service
	cfg     *config.Config
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, gateway *intake.Gateway, authSvc *auth.Service, cfg *config.Config) *Handler {
	return &Handler{
		store:   s,
		gateway: gateway,
		auth:    authSvc,
		cfg:     cfg,
	}
}

// identity resolves the session cookie to an identity, or nil when the
// request carries no valid session.
func (h *Handler) identity(c *gin.Context) *auth.Identity {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		return nil
	}
	id, err := h.auth.ParseToken(token)
	if err != nil {
		return nil
	}
	return id
}

// RequireAdmin is the gate for registry writes, status updates, exports,
// stats and roster resets. The guarded handler never runs partially: the
// chain is aborted before it starts.
func (h *Handler) RequireAdmin(c *gin.Context) {
	id := h.identity(c)
	if id == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	if !id.Role.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}
	c.Next()
}
