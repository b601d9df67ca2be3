package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/beaverbuddy/server/internal/ai"
	"github.com/beaverbuddy/server/internal/config"
	"github.com/beaverbuddy/server/internal/db"
	"github.com/beaverbuddy/server/internal/handlers"
	"github.com/beaverbuddy/server/internal/journal"
	"github.com/beaverbuddy/server/internal/middleware"
	"github.com/beaverbuddy/server/internal/streak"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// Initialize logger
	var zapLogger *zap.Logger
	var err error
	if cfg.IsProduction() {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("Failed to initialize PostgreSQL", "error", err)
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisClient, err := db.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatalw("Failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	// Text generation client and its consumers
	genClient := ai.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel, cfg.GenerationTimeout)
	questionGen := ai.NewQuestionGenerator(genClient, logger)
	composer := ai.NewResponseComposer(genClient, logger)
	questGen := ai.NewQuestGenerator(genClient, logger)

	// Engines
	journalStore := journal.NewPostgresStore(postgresDB)
	journalEngine := journal.NewEngine(journalStore, questionGen, composer, logger)
	streakEngine := streak.NewEngine(streak.NewPostgresStore(postgresDB), logger)

	// Nightly streak-at-risk scan
	reminder := streak.NewReminderScheduler(postgresDB, redisClient, logger)
	if err := reminder.Start(); err != nil {
		logger.Fatalw("Failed to start reminder scheduler", "error", err)
	}
	defer reminder.Stop()

	// Initialize Gin router
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// CORS for the mobile and web clients
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(postgresDB, redisClient, cfg, logger)
	questsHandler := handlers.NewQuestsHandler(questGen, journalStore, redisClient, cfg, logger)
	journalHandler := handlers.NewJournalHandler(journalEngine, redisClient, cfg, logger)
	streakHandler := handlers.NewStreakHandler(streakEngine, redisClient, cfg, logger)

	authRequired := middleware.AuthMiddleware(postgresDB, redisClient, cfg.JWTSecret)

	// Define routes
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		quests := v1.Group("/quests")
		quests.Use(authRequired)
		{
			quests.POST("/generate", questsHandler.Generate)
		}

		journalRoutes := v1.Group("/journal")
		journalRoutes.Use(authRequired)
		{
			journalRoutes.POST("/submit", journalHandler.Submit)
			journalRoutes.GET("/entries", journalHandler.ListEntries)
			journalRoutes.GET("/today", journalHandler.TodayStatus)
		}

		streakRoutes := v1.Group("/streak")
		streakRoutes.Use(authRequired)
		{
			streakRoutes.POST("/check", streakHandler.CheckStreak)
			streakRoutes.GET("/info", streakHandler.GetStreakInfo)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infow("Server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give a 5 second timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalw("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
