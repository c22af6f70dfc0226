package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/heavyduty/heavyduty-backend/internal/handlers"
	"github.com/heavyduty/heavyduty-backend/internal/middleware"
)

type RouterConfig struct {
	ReadinessHandler      *handlers.ReadinessHandler
	PromptTemplateHandler *handlers.PromptTemplateHandler
	AuthMiddleware        *middleware.AuthMiddleware
	AllowOrigins          []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("heavyduty-backend"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Readiness
	api.POST("/readiness/check", cfg.ReadinessHandler.Check)
	api.GET("/readiness/history", cfg.ReadinessHandler.History)
	// Prompt templates
	admin := api.Group("/admin")
	admin.POST("/prompt-templates", cfg.PromptTemplateHandler.Create)
	admin.POST("/prompt-templates/:id/activate", cfg.PromptTemplateHandler.Activate)
	admin.GET("/prompt-templates/roles/:role/active", cfg.PromptTemplateHandler.GetActive)

	return router
}
