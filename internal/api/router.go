package api

import (
	"github.com/gin-gonic/gin"

	"github.com/bookworm-ai/bookworm/internal/api/admin"
	"github.com/bookworm-ai/bookworm/internal/api/assistant"
	"github.com/bookworm-ai/bookworm/internal/api/middleware"
	"github.com/bookworm-ai/bookworm/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	sessionService *service.SessionService,
	chatService *service.ChatService,
	adminService *service.AdminService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Assistant API (public, cookie-scoped identity)
	assistantHandler := assistant.NewHandler(sessionService, chatService)
	assistantGroup := r.Group("/api/assistant")
	assistantGroup.Use(middleware.Identity())
	assistantHandler.RegisterRoutes(assistantGroup)

	// Admin API (requires API key)
	adminHandler := admin.NewHandler(adminService)
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.Auth(cfg.APIKey))
	adminHandler.RegisterRoutes(adminGroup)

	return r
}
