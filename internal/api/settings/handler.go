package settings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnselmJeong/Flow-v4/internal/domain"
	"github.com/AnselmJeong/Flow-v4/internal/service"
)

// Handler handles settings API requests
type Handler struct {
	settingsService *service.SettingsService
}

// NewHandler creates a new settings handler
func NewHandler(settingsService *service.SettingsService) *Handler {
	return &Handler{settingsService: settingsService}
}

// RegisterRoutes registers settings routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.Get)
	r.PUT("", h.Save)
}

// Get returns the current settings
func (h *Handler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// Save replaces the settings
func (h *Handler) Save(c *gin.Context) {
	var req domain.SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settingsService.Save(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTheme) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}
