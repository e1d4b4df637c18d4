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

	"github.com/bookworm-ai/bookworm/internal/api"
	"github.com/bookworm-ai/bookworm/internal/config"
	"github.com/bookworm-ai/bookworm/internal/llm"
	"github.com/bookworm-ai/bookworm/internal/repository"
	"github.com/bookworm-ai/bookworm/internal/service"
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
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	bookRepo := repository.NewBookRepository(db)
	queryLogRepo := repository.NewQueryLogRepository(db)

	// Initialize tools
	catalogService := service.NewCatalogService(bookRepo)
	var newsService *service.NewsService
	if cfg.News.APIKey != "" {
		newsService = service.NewNewsService(cfg.News.APIKey)
	}
	toolset := service.NewToolset(catalogService, newsService)

	// Initialize completion provider
	provider, err := llm.NewClient(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.TimeoutSeconds,
	}, toolset, logger)
	if err != nil {
		logger.Fatal("Failed to initialize completion client", zap.Error(err))
	}

	// Initialize services
	assistantService := service.NewAssistantService(provider, toolset, queryLogRepo, logger)
	sessionService := service.NewSessionService(userRepo, sessionRepo, logger)
	chatService := service.NewChatService(sessionRepo, assistantService, logger)
	adminService := service.NewAdminService(bookRepo, queryLogRepo)

	// Setup router
	router := api.SetupRouter(sessionService, chatService, adminService, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	// Create HTTP server. The write timeout must outlast a completion that
	// spends its full provider budget in the tool loop.
	providerTimeout := cfg.LLM.TimeoutSeconds
	if providerTimeout <= 0 {
		providerTimeout = 30
	}
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(providerTimeout+15) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Bookworm server",
			zap.String("address", cfg.Address()),
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
