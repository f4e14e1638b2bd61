package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ken2664/llm-question-app/internal/api"
	"github.com/Ken2664/llm-question-app/internal/api/handlers"
	"github.com/Ken2664/llm-question-app/internal/config"
	"github.com/Ken2664/llm-question-app/internal/database"
	"github.com/Ken2664/llm-question-app/internal/health"
	"github.com/Ken2664/llm-question-app/internal/llm"
	"github.com/Ken2664/llm-question-app/internal/middleware"
	"github.com/Ken2664/llm-question-app/internal/migration"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/repository"
	"github.com/Ken2664/llm-question-app/internal/services"
	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.InitLogger(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	gin.SetMode(cfg.Server.Mode)

	logger.Info("Starting LLM question app server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbManager, err := database.NewManager(ctx, &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Database.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := migration.NewRunner(dbManager.DB, logger).RunMigrations(cfg.Migrations.Path); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	catalog := services.NewCatalogService(repoManager, cache, cfg.Cache.CatalogTTL, logger)
	questions := services.NewQuestionService(repoManager, catalog, logger)
	comments := services.NewCommentService(repoManager, logger)
	profiles := services.NewProfileService(repoManager, logger)
	teachers := services.NewTeacherService(repoManager, cache, logger)

	factory := llm.NewFactory(llm.FactoryConfig{
		Gemini:        llm.Settings(cfg.LLM.Gemini),
		DeepSeek:      llm.Settings(cfg.LLM.DeepSeek),
		ClientTimeout: cfg.LLM.ClientTimeout,
	}, logger)
	for _, model := range llm.Models {
		if _, err := factory.Resolve(model); err != nil {
			logger.WithError(err).WithField("model", model).Warn("Provider not configured, requests for it will fail")
		}
	}
	answers := llm.NewAnswerService(factory, cfg.LLM.AskTimeout, logger)

	checker := health.NewHealthChecker(dbManager, cache, factory, repoManager.SystemHealth, logger)
	go checker.PeriodicHealthCheck(ctx, cfg.Health.Interval)

	askLimiter := middleware.NewRateLimiter(cfg.RateLimit.AskPerMinute).WithRejectHandler(func(c *gin.Context) {
		c.JSON(http.StatusTooManyRequests, models.AskErrorResponse{Error: "Too many requests, please try again later"})
	})
	defer askLimiter.Stop()
	apiLimiter := middleware.NewRateLimiter(cfg.RateLimit.APIPerMinute)
	defer apiLimiter.Stop()

	router := api.SetupRouter(api.Handlers{
		Ask:       handlers.NewAskHandler(answers, logger),
		Catalog:   handlers.NewCatalogHandler(catalog, logger),
		Questions: handlers.NewQuestionHandler(questions, logger),
		Comments:  handlers.NewCommentHandler(comments, logger),
		Me:        handlers.NewMeHandler(profiles, logger),
		Teacher:   handlers.NewTeacherHandler(teachers, logger),
		Health:    handlers.NewHealthHandler(checker, logger),
	}, api.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Auth:           middleware.NewAuthenticator(cfg.Auth.JWTSecret, logger),
		Roles:          profiles,
		AskLimiter:     askLimiter,
		APILimiter:     apiLimiter,
	}, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Longer than the answer deadline so /api/ask can always reply.
		WriteTimeout: cfg.LLM.AskTimeout + 10*time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server error")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.LLM.AskTimeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}

	logger.Info("Server stopped")
}
