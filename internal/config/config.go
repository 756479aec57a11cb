package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Heating ordinance collaborator
	HeatingServiceURL     string
	HeatingServiceTimeout time.Duration

	// Overall deadline for batch operations (Sync, BulkAllocate)
	BatchDeadline time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "immoledger"),
		DBPassword: getEnv("DB_PASSWORD", "immoledger"),
		DBName:     getEnv("DB_NAME", "immoledger"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		HeatingServiceURL: getEnv("HEATING_SERVICE_URL", "http://localhost:8090"),
	}

	config.HeatingServiceTimeout = getEnvDuration("HEATING_SERVICE_TIMEOUT", 10*time.Second)
	config.BatchDeadline = getEnvDuration("BATCH_DEADLINE", 2*time.Minute)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration environment variable, falling back to the
// default on a missing or invalid value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return dur
}
