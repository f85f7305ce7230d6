package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Mode        string
	Port        string
	Environment string

	// Capacity pre-creates a lot of this size; zero means the lot has to be
	// created through the shell or the API.
	Capacity int

	OTelServiceName string
	OTelEndpoint    string
	OTelEnabled     bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Mode:            getEnv("APP_MODE", "cli"),
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "parking-allocator"),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}

	capacity, err := strconv.Atoi(getEnv("PARKING_CAPACITY", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid PARKING_CAPACITY: %w", err)
	}
	cfg.Capacity = capacity

	enabled, err := strconv.ParseBool(getEnv("OTEL_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_ENABLED: %w", err)
	}
	cfg.OTelEnabled = enabled

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate is exported so flag overrides can be checked again after Load.
func (c *Config) Validate() error {
	switch c.Mode {
	case "cli", "server", "both":
	default:
		return fmt.Errorf("invalid mode %q: must be cli, server, or both", c.Mode)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative, got %d", c.Capacity)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
