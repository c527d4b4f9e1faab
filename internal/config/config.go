package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// SignScript is the path to the vendor signing script. Required for
	// streaming; the status and rank commands work without it.
	SignScript string
	// UserAgent overrides the default browser fingerprint when set.
	UserAgent string
	// LogLevel is a zerolog level name; empty means info.
	LogLevel string
}

// Load reads configuration from a .env file (if present) and environment
// variables. Environment variables take precedence over .env values.
func Load() *Config {
	// godotenv.Load does not overwrite existing env vars
	_ = godotenv.Load()

	return &Config{
		SignScript: os.Getenv("DYMON_SIGN_SCRIPT"),
		UserAgent:  os.Getenv("DYMON_USER_AGENT"),
		LogLevel:   os.Getenv("DYMON_LOG_LEVEL"),
	}
}
