// internal/database/config.go
package database

import (
	"os"
)

// GetTestConfig returns database config for testing
func GetTestConfig() Config {
	return Config{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     5432,
		Database: getEnv("TEST_DB_NAME", "quillgate"),
		User:     getEnv("TEST_DB_USER", "quillgate"),
		Password: getEnv("TEST_DB_PASSWORD", ""),
		SSLMode:  "disable",
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
