package reader

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/service"
)

// Handler handles reader API requests: selections, sessions, and messages
type Handler struct {
	selectionService *service.SelectionService
	sessionService   *service.SessionService
	chatService      *service.ChatService
}

// NewHandler creates a new reader handler
func NewHandler(
	selectionService *service.SelectionService,
	sessionService *service.SessionService,
	chatService *service.ChatService,
) *Handler {
	return &Handler{
		selectionService: selectionService,
		sessionService:   sessionService,
		chatService:      chatService,
	}
}

// RegisterRoutes registers reader routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/selections", h.StartSelection)

	r.GET("/books/:id/sessions", h.ListSessions)

	sessions := r.Group("/sessions")
	{
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.GET("/:id/messages", h.ListMessages)
		sessions.POST("/:id/messages", h.SendMessage)
	}
}

// StartSelection opens a new session anchored to the selected passage
func (h *Handler) StartSelection(c *gin.Context) {
	var req domain.StartSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.selectionService.Start(c.Request.Context(), req.BookID, req.SelectedText, req.Intent)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListSessions returns a book's sessions, most recently active first
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListByBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession returns one session
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.sessionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session and its transcript
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

// ListMessages returns the session transcript in order
func (h *Handler) ListMessages(c *gin.Context) {
	messages, err := h.sessionService.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage runs one conversation turn. A model failure is not an HTTP
// error: the outcome carries the failure classification and the in-thread
// notice, and the status stays 200.
func (h *Handler) SendMessage(c *gin.Context) {
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.chatService.SendMessage(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// errStatus maps service errors onto HTTP status codes
func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAnchor),
		errors.Is(err, domain.ErrUnknownIntent),
		errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
