package api

import (
	"studyquiz/internal/api/handlers"
	"studyquiz/internal/logger"

	"github.com/gin-gonic/gin"
)

// RouteConfig carries the cross-cutting pieces the routes are wrapped in.
type RouteConfig struct {
	FrontendOrigins []string
	// RateLimit guards quiz generation. Nil disables it.
	RateLimit gin.HandlerFunc
	Log       *logger.Logger
}

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, cfg RouteConfig) {
	router.Use(RequestID())
	router.Use(RequestLogger(cfg.Log))
	router.Use(CORSMiddleware(cfg.FrontendOrigins))

	router.GET("/healthz", handler.HandleHealth)

	api := router.Group("/api")
	{
		quiz := api.Group("/quiz")

		generate := []gin.HandlerFunc{handler.HandleGenerateQuiz}
		if cfg.RateLimit != nil {
			generate = append([]gin.HandlerFunc{cfg.RateLimit}, generate...)
		}
		quiz.POST("/upload", generate...)
		quiz.POST("/check", handler.HandleCheckAnswer)
	}
}
