package assistant

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookworm-ai/bookworm/internal/api/middleware"
	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/service"
)

// cookieMaxAge keeps identity and anonymous-session cookies for 30 days.
const cookieMaxAge = 30 * 24 * 60 * 60

// Handler handles assistant API requests
type Handler struct {
	sessions *service.SessionService
	chat     *service.ChatService
}

// NewHandler creates a new assistant handler
func NewHandler(sessions *service.SessionService, chat *service.ChatService) *Handler {
	return &Handler{sessions: sessions, chat: chat}
}

// RegisterRoutes registers assistant routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/query", h.Query)
	r.POST("/identify", h.Identify)
	r.POST("/logout", h.Logout)
	r.GET("/sessions", h.ListSessions)
	r.POST("/sessions", h.NewSession)
	r.GET("/sessions/:id", h.SessionMessages)
}

// Query handles one chat message
func (h *Handler) Query(c *gin.Context) {
	var req domain.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := middleware.CallerFrom(c)
	resolution, err := h.sessions.Resolve(caller, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if resolution.Token != "" && resolution.Token != caller.AnonymousToken {
		h.setCookie(c, middleware.SessionTokenCookie, resolution.Token)
	}

	result, err := h.chat.Query(c.Request.Context(), resolution.Session, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": resolution.Session.ID,
		"result":     result,
	})
}

// Identify claims a handle for the caller
func (h *Handler) Identify(c *gin.Context) {
	var req domain.IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.sessions.Identify(req.Identifier)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, middleware.IdentityCookie, user.Identifier)
	h.clearCookie(c, middleware.SessionTokenCookie)

	c.JSON(http.StatusOK, gin.H{"identifier": user.Identifier})
}

// Logout clears identity and anonymous-session bindings
func (h *Handler) Logout(c *gin.Context) {
	h.clearCookie(c, middleware.IdentityCookie)
	h.clearCookie(c, middleware.SessionTokenCookie)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListSessions returns the caller's sessions, most recently active first
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.sessions.ListSessions(middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, gin.H{
			"id":               s.ID,
			"name":             s.DisplayName(),
			"session_number":   s.SessionNumber,
			"last_activity_at": s.LastActivityAt,
			"messages_count":   s.MessagesCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": items})
}

// NewSession starts a fresh chat thread
func (h *Handler) NewSession(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	resolution, err := h.sessions.NewSession(caller)
	if err != nil {
		respondError(c, err)
		return
	}
	if resolution.Token != "" {
		h.setCookie(c, middleware.SessionTokenCookie, resolution.Token)
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id":     resolution.Session.ID,
		"session_number": resolution.Session.SessionNumber,
	})
}

// SessionMessages returns a session's messages in order
func (h *Handler) SessionMessages(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	messages, err := h.sessions.SessionMessages(middleware.CallerFrom(c), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) setCookie(c *gin.Context, name, value string) {
	c.SetCookie(name, value, cookieMaxAge, "/", "", false, true)
}

func (h *Handler) clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", false, true)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidIdentifier), errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
