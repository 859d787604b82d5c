package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AnselmJeong/Flow-v4/internal/api"
	"github.com/AnselmJeong/Flow-v4/internal/config"
	"github.com/AnselmJeong/Flow-v4/internal/llm"
	"github.com/AnselmJeong/Flow-v4/internal/logger"
	"github.com/AnselmJeong/Flow-v4/internal/repository"
	"github.com/AnselmJeong/Flow-v4/internal/service"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zlog := logger.New(cfg.Log.Path, cfg.Log.Debug)
	defer zlog.Sync()

	// Initialize database
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	bookRepo := repository.NewBookRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize model gateway
	gateway := llm.NewGateway(cfg.LLM.BaseURL)

	// Initialize services
	libraryService := service.NewLibraryService(bookRepo, sessionRepo)
	sessionService := service.NewSessionService(sessionRepo, bookRepo)
	selectionService := service.NewSelectionService(sessionService)
	chatService := service.NewChatService(cfg, sessionRepo, settingsRepo, gateway, zlog)
	settingsService := service.NewSettingsService(cfg, settingsRepo)

	// Setup router
	router := api.SetupRouter(
		libraryService,
		selectionService,
		sessionService,
		chatService,
		settingsService,
		api.RouterConfig{
			AllowOrigins: []string{"*"},
			Logger:       zlog,
		},
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zlog.Info("Starting Flow server",
			zap.String("address", cfg.Address()),
			zap.String("database", cfg.Database.Path),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exited")
}
