package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          int
	DevMode       bool
	LogLevel      string
	CachePath     string
	CacheTTL      time.Duration
	MaxDataPoints int // default response series cap; 0 = unrestricted
	QuoteProxyURL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnvAsInt("PORT", 8080),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CachePath:     getEnv("CACHE_PATH", "./data/price_cache.db"),
		CacheTTL:      time.Duration(getEnvAsInt("CACHE_TTL_HOURS", 24)) * time.Hour,
		MaxDataPoints: getEnvAsInt("MAX_DATA_POINTS", 150),
		QuoteProxyURL: getEnv("QUOTE_PROXY_URL", ""), // optional proxy in front of Yahoo
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.CachePath == "" {
		return fmt.Errorf("CACHE_PATH is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_HOURS must be positive")
	}
	if c.MaxDataPoints < 0 {
		return fmt.Errorf("MAX_DATA_POINTS must not be negative")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
