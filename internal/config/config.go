package config

import (
	"os"
	"strconv"

	"postlift/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Shopify     ShopifyConfig
	Instagram   InstagramConfig
	Attribution AttributionConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ShopifyConfig holds the order-source collaborator settings
type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
}

// InstagramConfig holds the post-source collaborator settings
type InstagramConfig struct {
	AccessToken string
	GraphURL    string
}

// AttributionConfig holds engine tunables that operators may override.
// The full weight table stays in code; only the coarse knobs are exposed.
type AttributionConfig struct {
	LookbackDays int
	Workers      int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:  os.Getenv("SHOPIFY_SHOP_DOMAIN"),
			AccessToken: os.Getenv("SHOPIFY_ACCESS_TOKEN"),
			APIVersion:  getEnvOrDefault("SHOPIFY_API_VERSION", "2024-04"),
		},
		Instagram: InstagramConfig{
			AccessToken: os.Getenv("INSTAGRAM_ACCESS_TOKEN"),
			GraphURL:    getEnvOrDefault("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com"),
		},
		Attribution: AttributionConfig{
			LookbackDays: getEnvIntOrDefault("ATTRIBUTION_LOOKBACK_DAYS", 30),
			Workers:      getEnvIntOrDefault("ATTRIBUTION_WORKERS", 1),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Attribution.LookbackDays <= 0 {
		return errors.ConfigInvalid("ATTRIBUTION_LOOKBACK_DAYS must be positive")
	}
	if config.Attribution.Workers <= 0 {
		return errors.ConfigInvalid("ATTRIBUTION_WORKERS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
