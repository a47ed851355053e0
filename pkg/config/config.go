package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Identity provider modes.
const (
	IdentityModeLocal  = "local"  // built-in HS256 issuer, dev and self-hosted
	IdentityModeRemote = "remote" // external provider verifies tokens
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	RedisURL           string
	LogLevel           string
	CORSAllowedOrigins []string

	DatabaseHost     string
	DatabasePort     int
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string

	IdentityMode string
	IdentityURL  string // remote mode only
	JWTSecret    string // local mode only
	TokenTTL     time.Duration

	DashboardCacheTTL time.Duration
	RateLimitPerMin   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DATABASE_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_PORT: %w", err)
	}

	tokenTTLMin, err := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %w", err)
	}

	cacheTTLSec, err := strconv.Atoi(getEnv("DASHBOARD_CACHE_TTL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_CACHE_TTL_SECONDS: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	mode := getEnv("IDENTITY_MODE", IdentityModeLocal)
	if mode != IdentityModeLocal && mode != IdentityModeRemote {
		return nil, fmt.Errorf("invalid IDENTITY_MODE: %q (want local or remote)", mode)
	}

	identityURL := os.Getenv("IDENTITY_URL")
	if mode == IdentityModeRemote && identityURL == "" {
		return nil, fmt.Errorf("IDENTITY_URL is required when IDENTITY_MODE=remote")
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),

		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     dbPort,
		DatabaseUser:     getEnv("DATABASE_USER", "servicetracker"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "dev"),
		DatabaseName:     getEnv("DATABASE_NAME", "servicetracker"),
		DatabaseSSLMode:  getEnv("DATABASE_SSLMODE", "disable"),

		IdentityMode: mode,
		IdentityURL:  identityURL,
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     time.Duration(tokenTTLMin) * time.Minute,

		DashboardCacheTTL: time.Duration(cacheTTLSec) * time.Second,
		RateLimitPerMin:   rateLimit,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
