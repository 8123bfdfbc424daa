// internal/config/env.go
package config

import (
	"os"
	"strconv"
)

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("QUILLGATE_METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.MetricsPort = p
		}
	}

	if logLevel := os.Getenv("QUILLGATE_LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}

	if host := os.Getenv("QUILLGATE_DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("QUILLGATE_DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Database.Port = p
		}
	}
	if name := os.Getenv("QUILLGATE_DB_NAME"); name != "" {
		cfg.Database.Database = name
	}
	if user := os.Getenv("QUILLGATE_DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("QUILLGATE_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	if schedule := os.Getenv("QUILLGATE_MONITOR_SCHEDULE"); schedule != "" {
		cfg.Monitor.Schedule = schedule
	}
}

// GetEnvOrDefault returns environment variable or default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
