package library

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/service"
)

// Handler handles library API requests
type Handler struct {
	libraryService *service.LibraryService
}

// NewHandler creates a new library handler
func NewHandler(libraryService *service.LibraryService) *Handler {
	return &Handler{libraryService: libraryService}
}

// RegisterRoutes registers library routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	books := r.Group("/books")
	{
		books.POST("", h.AddBook)
		books.GET("", h.ListBooks)
		books.GET("/:id", h.GetBook)
		books.DELETE("/:id", h.DeleteBook)
		books.PUT("/:id/progress", h.UpdateProgress)
	}

	r.GET("/stats", h.GetStats)
}

// AddBook registers a book on the shelf
func (h *Handler) AddBook(c *gin.Context) {
	var req domain.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.libraryService.AddBook(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, book)
}

// ListBooks returns the shelf
func (h *Handler) ListBooks(c *gin.Context) {
	books, err := h.libraryService.ListBooks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

// GetBook returns one book
func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.libraryService.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, book)
}

// UpdateProgress records the reading position for a book
func (h *Handler) UpdateProgress(c *gin.Context) {
	var req domain.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.libraryService.UpdateProgress(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book and all of its sessions
func (h *Handler) DeleteBook(c *gin.Context) {
	if err := h.libraryService.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}

// GetStats returns shelf-wide counters
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.libraryService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
