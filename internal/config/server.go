package config

import "time"

// ServerConfig holds configuration for the mock API server.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	TracingEnabled  bool
	TracingEndpoint string

	LogLevel string
}

// LoadServer reads mock server configuration from environment variables.
func LoadServer() *ServerConfig {
	return &ServerConfig{
		Port:         getEnv("AGENTSIGHT_MOCK_PORT", "8080"),
		ReadTimeout:  getDurationEnv("AGENTSIGHT_MOCK_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDurationEnv("AGENTSIGHT_MOCK_WRITE_TIMEOUT", 30*time.Second),

		RateLimitRequests: getIntEnv("AGENTSIGHT_MOCK_RATE_LIMIT", 100),
		RateLimitWindow:   getDurationEnv("AGENTSIGHT_MOCK_RATE_WINDOW", time.Minute),

		TracingEnabled:  getEnv("AGENTSIGHT_TRACING_ENABLED", "") == "true",
		TracingEndpoint: getEnv("AGENTSIGHT_TRACING_ENDPOINT", "localhost:4318"),

		LogLevel: getEnv("AGENTSIGHT_LOG_LEVEL", "info"),
	}
}
