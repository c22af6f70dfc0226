package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	redisclient "github.com/heavyduty/heavyduty-backend/internal/clients/redis"
	"github.com/heavyduty/heavyduty-backend/internal/db"
	"github.com/heavyduty/heavyduty-backend/internal/handlers"
	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/middleware"
	"github.com/heavyduty/heavyduty-backend/internal/observability"
	"github.com/heavyduty/heavyduty-backend/internal/repos"
	"github.com/heavyduty/heavyduty-backend/internal/seed"
	"github.com/heavyduty/heavyduty-backend/internal/server"
	"github.com/heavyduty/heavyduty-backend/internal/services"
	"github.com/heavyduty/heavyduty-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	otelShutdown := observability.InitOTel(ctx, log, "heavyduty-backend")

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	templateSeedPath := utils.GetEnv("PROMPT_TEMPLATE_SEED_PATH", "config/prompt_templates.yaml", log)
	callLogQueueSize := utils.GetEnvAsInt("CALL_LOG_QUEUE_SIZE", 256, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	promptTemplateRepo := repos.NewPromptTemplateRepo(thePG, log)
	aiCallLogRepo := repos.NewAICallLogRepo(thePG, log)
	checkInRepo := repos.NewReadinessCheckInRepo(thePG, log)

	// Seed default templates
	if err := seed.LoadDefaultTemplates(ctx, log, promptTemplateRepo, templateSeedPath); err != nil {
		log.Warn("Template seeding failed (continuing with store contents)", "error", err)
	}

	// Clients
	var templateCache *redisclient.TemplateCache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		templateCache, err = redisclient.NewTemplateCache(log)
		if err != nil {
			log.Warn("Redis template cache init failed (running without cache)", "error", err)
			templateCache = nil
		}
	}
	aiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	templateService := services.NewPromptTemplateService(thePG, log, promptTemplateRepo, templateCache)
	callLogService := services.NewCallLogService(log, aiCallLogRepo, callLogQueueSize)
	callLogService.Start(ctx)
	readinessService := services.NewReadinessService(thePG, log, templateService, aiClient, callLogService, checkInRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	readinessHandler := handlers.NewReadinessHandler(log, readinessService)
	promptTemplateHandler := handlers.NewPromptTemplateHandler(log, templateService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ReadinessHandler:      readinessHandler,
		PromptTemplateHandler: promptTemplateHandler,
		AuthMiddleware:        authMiddleware,
		AllowOrigins:          splitOrigins(utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)),
	})

	port := utils.GetEnv("PORT", "8080", log)
	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", "error", err)
	}
	callLogService.Drain(5 * time.Second)
	if templateCache != nil {
		_ = templateCache.Close()
	}
	if otelShutdown != nil {
		_ = otelShutdown(shutdownCtx)
	}
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
