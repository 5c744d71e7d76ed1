// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the complete application configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// MongoURI is the MongoDB connection string (required).
	MongoURI string

	// JWTSecret signs session tokens (required).
	JWTSecret string

	// MediaUploadURL is the base URL of the media store's upload API.
	// When empty, sends with attachments are rejected as upstream failures.
	MediaUploadURL string

	// MediaUploadPreset is the unsigned upload preset passed to the media store.
	MediaUploadPreset string

	// RateLimitRPM controls requests per minute on the auth endpoints.
	RateLimitRPM int

	// AllowedOrigins are the origins accepted on WebSocket upgrades.
	// "*" allows any origin.
	AllowedOrigins []string

	// Debug includes upstream error detail in 500 responses.
	Debug bool
}

// Load reads configuration from a .env file (if present) and the environment.
// Missing required values return an error so main can fail fast.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              "8080",
		RateLimitRPM:      10,
		AllowedOrigins:    []string{"*"},
		MediaUploadURL:    os.Getenv("MEDIA_UPLOAD_URL"),
		MediaUploadPreset: os.Getenv("MEDIA_UPLOAD_PRESET"),
	}

	cfg.MongoURI = os.Getenv("MONGODB_URI")
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI must be set")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if v := os.Getenv("RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitRPM = n
		}
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.Debug = os.Getenv("DEBUG") == "true"

	return cfg, nil
}
