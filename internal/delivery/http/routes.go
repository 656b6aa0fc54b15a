package http

import (
	"github.com/gin-gonic/gin"

	"github.com/foodscan/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Image upload and analysis
	images := router.Group("/images")
	{
		images.GET("", handler.ListImages)
		images.POST("/upload", handler.UploadImage)
		images.POST("/analyze", handler.AnalyzeImage)
		images.POST("/analyze-openai", handler.AnalyzeImageGenerative)
	}

	// Product database search
	products := router.Group("/products")
	{
		products.POST("/search", handler.SearchProducts)
	}

	return router
}
