package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the settings of the contacts service. It is populated from environment
// variables, which a .env file may provide during development.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
}

// AppConfig holds the settings of the HTTP server.
type AppConfig struct {
	Environment string // development, production
	Port        string
	PublicURL   string
	// RequestLogging is false when GIN_LOGGING is set to "off".
	RequestLogging bool
}

// DatabaseConfig names the MongoDB deployment and the database holding the contacts.
type DatabaseConfig struct {
	URI  string
	Name string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		App: AppConfig{
			Environment:    getEnv("APP_ENV", "development"),
			Port:           port,
			PublicURL:      getEnv("PUBLIC_URL", "http://localhost:"+port),
			RequestLogging: !strings.EqualFold(os.Getenv("GIN_LOGGING"), "off"),
		},
		Database: DatabaseConfig{
			URI:  os.Getenv("MONGODB_URI"),
			Name: getEnv("MONGODB_DATABASE", "contactsDB"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Database.URI == "" {
		cfg.Database.URI = "mongodb://localhost:27017"
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate checks the settings that cannot be defaulted safely.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.App.Port); err != nil {
		return fmt.Errorf("could not parse PORT env variable %q", c.App.Port)
	}
	if c.IsProduction() && c.Database.URI == "" {
		return fmt.Errorf("MONGODB_URI must be set in production")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("MONGODB_DATABASE must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
