package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	KeystorePath     string // Required: path to the key container file
	KeystorePassword string // Required: container password
	KeyPassword      string // Required: password protecting the key entries

	Issuer              string        // Issuer claim for tokens (default: auth-backend)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads configuration from the environment. Call Validate
// before using the result; the key container settings have no defaults.
func LoadConfig() Config {
	return Config{
		KeystorePath:        os.Getenv("ENOTES_KEYSTORE_PATH"),
		KeystorePassword:    os.Getenv("ENOTES_KEYSTORE_PASSWORD"),
		KeyPassword:         os.Getenv("ENOTES_KEY_PASSWORD"),
		Issuer:              getEnvOrDefault("ENOTES_ISSUER", "auth-backend"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate rejects configurations the service cannot start with. The
// three key container settings are hard requirements.
func (c Config) Validate() error {
	var missing []string
	if c.KeystorePath == "" {
		missing = append(missing, "ENOTES_KEYSTORE_PATH")
	}
	if c.KeystorePassword == "" {
		missing = append(missing, "ENOTES_KEYSTORE_PASSWORD")
	}
	if c.KeyPassword == "" {
		missing = append(missing, "ENOTES_KEY_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("app: missing required configuration: %v", missing)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("app: PORT must be a valid port number")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
