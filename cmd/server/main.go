package main

import (
	"fmt"
	"log"
	"os"

	"github.com/foodscan/backend/config"
	httpDelivery "github.com/foodscan/backend/internal/delivery/http"
	"github.com/foodscan/backend/internal/domain"
	"github.com/foodscan/backend/internal/infrastructure/cache"
	"github.com/foodscan/backend/internal/infrastructure/openfoodfacts"
	"github.com/foodscan/backend/internal/infrastructure/storage"
	"github.com/foodscan/backend/internal/infrastructure/vision"
	"github.com/foodscan/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting FoodScan Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Vision provider: %s", cfg.Vision.Provider)

	debug := cfg.Server.Environment == "development" || cfg.Pipeline.EnableDebugLogging

	// Initialize infrastructure dependencies
	store, err := storage.NewDiskStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}
	log.Printf("Upload dir: %s (max %d bytes)", cfg.Upload.Dir, cfg.Upload.MaxBytes)

	searchCache := cache.NewMemoryCache(cfg.Pipeline.CacheTTL)

	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent, cfg.Pipeline.MaxProductsPerTerm)
	offClient.SetDebug(debug)

	// Provider selection is explicit configuration, resolved once here and
	// passed into the pipeline constructor
	var structured domain.StructuredAnnotator
	var generative domain.GenerativeAnnotator

	switch cfg.Vision.Provider {
	case "mock":
		mock := vision.NewMockAnnotator()
		structured = mock
		generative = mock
		log.Printf("Using mock annotators (no external vision calls)")
	default:
		structuredClient := vision.NewStructuredClient(cfg.Vision.APIKey, cfg.Vision.BaseURL, cfg.Pipeline.CallTimeout)
		structuredClient.SetDebug(debug)
		structured = structuredClient

		generativeClient := vision.NewGenerativeClient(cfg.Generative.APIKey, cfg.Generative.BaseURL, cfg.Generative.Model, cfg.Pipeline.CallTimeout)
		generativeClient.SetDebug(debug)
		generative = generativeClient

		if cfg.Vision.APIKey == "" {
			log.Printf("WARNING: structured vision API key not configured - analyze calls will fail")
		}
		if !generativeClient.Configured() {
			log.Printf("Generative provider not configured - analyze-openai will return 503")
		}
	}

	// Initialize usecase layer
	matcher := usecase.NewMatcher(offClient, searchCache, usecase.MatcherConfig{
		MaxProducts:        cfg.Pipeline.MaxProductsPerTerm,
		CacheTTL:           cfg.Pipeline.CacheTTL,
		EnableDebugLogging: debug,
	})

	pipeline := usecase.NewPipeline(structured, generative, matcher, usecase.PipelineConfig{
		EnableDebugLogging: debug,
	})

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(pipeline, store)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
