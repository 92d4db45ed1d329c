// Package config provides environment configuration for the AgentSight SDK.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/agentsight/agentsight-go/pkg/model"
)

// APIKeyPattern is the required shape of an AgentSight API key.
var APIKeyPattern = regexp.MustCompile(`(?i)^ags_[a-f0-9]{32}_[a-f0-9]{6}$`)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("could not initialize AgentSight client: API key is missing")

// InvalidAPIKeyError is returned when the configured API key does not match
// the expected shape.
type InvalidAPIKeyError struct {
	APIKey string
	AppURL string
}

func (e *InvalidAPIKeyError) Error() string {
	return fmt.Sprintf("API key is invalid: %s (find your API key at %s/settings)", e.APIKey, e.AppURL)
}

// Config holds all configuration for the SDK clients.
type Config struct {
	// API settings
	APIKey   string
	Endpoint string
	AppURL   string

	// Tracking settings
	ConversationID string
	Environment    model.Environment

	// Transport settings
	Timeout    time.Duration
	MaxRetries int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		APIKey:   getEnv("AGENTSIGHT_API_KEY", ""),
		Endpoint: getEnv("AGENTSIGHT_API_ENDPOINT", "https://api.agentsight.io"),
		AppURL:   getEnv("AGENTSIGHT_APP_URL", "https://app.agentsight.io"),

		ConversationID: getEnv("AGENTSIGHT_CONVERSATION_ID", ""),
		Environment:    model.Environment(getEnv("AGENTSIGHT_ENVIRONMENT", "")),

		Timeout:    getDurationEnv("AGENTSIGHT_HTTP_TIMEOUT", 15*time.Second),
		MaxRetries: getIntEnv("AGENTSIGHT_HTTP_MAX_RETRIES", 3),

		LogLevel: getEnv("AGENTSIGHT_LOG_LEVEL", "info"),
	}
}

// Validate checks the API key. A blank key fails with ErrNoAPIKey; a key
// that does not match APIKeyPattern fails with *InvalidAPIKeyError.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if !APIKeyPattern.MatchString(c.APIKey) {
		return &InvalidAPIKeyError{APIKey: c.APIKey, AppURL: c.AppURL}
	}
	if c.Environment != "" {
		switch c.Environment {
		case model.EnvironmentProduction, model.EnvironmentDevelopment:
		default:
			return fmt.Errorf("invalid environment %q: expected %q or %q",
				c.Environment, model.EnvironmentProduction, model.EnvironmentDevelopment)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
