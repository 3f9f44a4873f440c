package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/target/golinks/config"
)

// InitLogger initializes the structured logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateConfig checks the settings the service cannot run without.
func ValidateConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.Auth.OAuth.ClientID == "" || cfg.Auth.OAuth.ClientSecret == "" {
		return errors.New("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required")
	}
	if cfg.Auth.OAuth.IssuerURL == "" {
		return errors.New("OAUTH_ISSUER_URL is required")
	}
	if len(cfg.Session.Keys) == 0 {
		return errors.New("SESSION_KEYS is required")
	}
	if _, ok := cfg.Session.Keys[cfg.Session.KeyID]; !ok {
		return fmt.Errorf("SESSION_KEYS has no entry for SESSION_KEY_ID %q", cfg.Session.KeyID)
	}
	return nil
}
