package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyquiz/internal/api"
	"studyquiz/internal/api/handlers"
	"studyquiz/internal/config"
	"studyquiz/internal/db"
	"studyquiz/internal/gemini"
	"studyquiz/internal/logger"
	"studyquiz/internal/quiz"
	"studyquiz/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

func main() {
	loaded, envErr := config.LoadEnv()
	cfg := config.FromEnv()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch {
	case envErr != nil:
		log.Fatal("Error loading .env file", "error", envErr)
	case loaded:
		log.Info(".env file loaded")
	default:
		log.Warn(".env file not found, relying on system environment variables")
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing key is reported per request, so the server still starts.
	var generator quiz.Generator
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, quiz generation will fail until it is configured")
	} else {
		geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.Fatal("Failed to initialize Gemini client", "error", err)
		}
		defer geminiClient.Close()
		generator = geminiClient
		log.Info("Gemini client ready", "model", geminiClient.Model())
	}

	var ledger db.Recorder = db.NopRecorder{}
	if cfg.DatabaseURL != "" {
		database, err := db.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database", "error", err)
		}
		defer database.Close()

		l := db.NewLedger(database, log)
		if err := l.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare generation ledger", "error", err)
		}
		ledger = l
		log.Info("Generation ledger enabled")
	}

	var limiter gin.HandlerFunc
	if cfg.RedisURL != "" {
		counter, err := ratelimit.NewRedisCounter(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to redis", "error", err)
		}
		defer counter.Close()
		limiter = ratelimit.Limit(counter, cfg.RateLimitPerMinute, log)
		log.Info("Rate limiting enabled", "per_minute", cfg.RateLimitPerMinute)
	}

	svc := quiz.NewService(generator, quiz.Limits{
		TextCharLimit:     cfg.TextCharLimit,
		MinTextChars:      cfg.MinTextChars,
		GenerationTimeout: cfg.GenerationTimeout,
	}, log)
	handler := handlers.NewHandler(svc, ledger, handlers.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxQuestions:   cfg.MaxQuestions,
	}, log)

	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, handler, api.RouteConfig{
		FrontendOrigins: cfg.FrontendOrigins,
		RateLimit:       limiter,
		Log:             log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited properly")
}
