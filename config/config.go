package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Vision        VisionConfig
	Generative    GenerativeConfig
	OpenFoodFacts OpenFoodFactsConfig
	Upload        UploadConfig
	Pipeline      PipelineConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VisionConfig selects and configures the structured annotator.
// Provider is "cloud" or "mock"; there is no environment-inspected singleton,
// the resolved client is passed into the pipeline constructor.
type VisionConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// GenerativeConfig configures the generative annotator. An empty APIKey leaves
// the provider unconfigured; the analyze-openai endpoint then returns 503.
type GenerativeConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// OpenFoodFactsConfig holds product database configuration
type OpenFoodFactsConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// UploadConfig holds upload storage configuration
type UploadConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// PipelineConfig holds pipeline tuning knobs
type PipelineConfig struct {
	CallTimeout        time.Duration `mapstructure:"call_timeout"`
	MaxProductsPerTerm int           `mapstructure:"max_products_per_term"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	EnableDebugLogging bool          `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/foodscan/")

	// Environment variable settings
	v.SetEnvPrefix("FOODSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Vision defaults. API keys default to empty so the env keys are always
	// known to viper; empty means "unconfigured", surfaced at call time.
	v.SetDefault("vision.provider", "cloud")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.base_url", "https://vision.googleapis.com")

	// Generative defaults
	v.SetDefault("generative.api_key", "")
	v.SetDefault("generative.base_url", "https://api.openai.com")
	v.SetDefault("generative.model", "gpt-4o")

	// Open Food Facts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "FoodScan/1.0")

	// Upload defaults
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.max_bytes", 10*1024*1024) // 10 MB ceiling

	// Pipeline defaults
	v.SetDefault("pipeline.call_timeout", "10s")
	v.SetDefault("pipeline.max_products_per_term", 3)
	v.SetDefault("pipeline.cache_ttl", "1h")
	v.SetDefault("pipeline.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Vision.Provider != "cloud" && config.Vision.Provider != "mock" {
		return fmt.Errorf("vision provider must be 'cloud' or 'mock', got: %s", config.Vision.Provider)
	}

	if config.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max_bytes must be positive, got: %d", config.Upload.MaxBytes)
	}

	if config.Pipeline.CallTimeout <= 0 {
		return fmt.Errorf("pipeline call_timeout must be positive, got: %s", config.Pipeline.CallTimeout)
	}

	if config.Pipeline.MaxProductsPerTerm <= 0 {
		return fmt.Errorf("pipeline max_products_per_term must be positive, got: %d", config.Pipeline.MaxProductsPerTerm)
	}

	return nil
}
