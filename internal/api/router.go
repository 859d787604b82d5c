package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AnselmJeong/Flow-v4/internal/api/library"
	"github.com/AnselmJeong/Flow-v4/internal/api/middleware"
	"github.com/AnselmJeong/Flow-v4/internal/api/reader"
	"github.com/AnselmJeong/Flow-v4/internal/api/settings"
	"github.com/AnselmJeong/Flow-v4/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
	Logger       *zap.Logger
}

// SetupRouter sets up the Gin router
func SetupRouter(
	libraryService *service.LibraryService,
	selectionService *service.SelectionService,
	sessionService *service.SessionService,
	chatService *service.ChatService,
	settingsService *service.SettingsService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Library API (shelf management)
	libraryHandler := library.NewHandler(libraryService)
	libraryGroup := r.Group("/api/library")
	libraryHandler.RegisterRoutes(libraryGroup)

	// Reader API (selections, sessions, messages)
	readerHandler := reader.NewHandler(selectionService, sessionService, chatService)
	readerGroup := r.Group("/api/reader")
	readerHandler.RegisterRoutes(readerGroup)

	// Settings API
	settingsHandler := settings.NewHandler(settingsService)
	settingsGroup := r.Group("/api/settings")
	settingsHandler.RegisterRoutes(settingsGroup)

	return r
}
