// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// External spreadsheet endpoints
	AdminCSVURL string // administrative hierarchy export
	LogCSVURL   string // submission log export
	ScriptURL   string // append-only write endpoint

	// HTTP surface
	AllowedOrigins []string
	RateLimitRPM   int

	// Fetch behavior
	FetchTimeoutSeconds    int
	RefreshIntervalMinutes int

	// Hierarchy engine
	RegionAllowList []string // empty disables the allow-list filter

	// Dashboard search behavior: "rank" | "filter"
	SearchMode string

	// Draft coordinate defaults when geolocation is unavailable
	DefaultLatitude  string
	DefaultLongitude string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		AdminCSVURL: getEnv("ADMIN_CSV_URL", ""),
		LogCSVURL:   getEnv("LOG_CSV_URL", ""),
		ScriptURL:   getEnv("SCRIPT_URL", ""),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 60),

		FetchTimeoutSeconds:    getEnvInt("FETCH_TIMEOUT_SECONDS", 0),
		RefreshIntervalMinutes: getEnvInt("REFRESH_INTERVAL_MINUTES", 5),

		RegionAllowList: splitList(getEnv("REGION_ALLOW_LIST", "")),

		SearchMode: getEnv("SEARCH_MODE", "rank"),

		DefaultLatitude:  getEnv("DEFAULT_LATITUDE", "0.000000"),
		DefaultLongitude: getEnv("DEFAULT_LONGITUDE", "0.000000"),
	}

	if cfg.SearchMode != "rank" && cfg.SearchMode != "filter" {
		return nil, fmt.Errorf("SEARCH_MODE must be \"rank\" or \"filter\", got %q", cfg.SearchMode)
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if cfg.AdminCSVURL == "" {
			return nil, fmt.Errorf("ADMIN_CSV_URL is required in production")
		}
		if cfg.LogCSVURL == "" {
			return nil, fmt.Errorf("LOG_CSV_URL is required in production")
		}
		if cfg.ScriptURL == "" {
			return nil, fmt.Errorf("SCRIPT_URL is required in production")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
