package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_MODE", "PORT", "ENVIRONMENT", "PARKING_CAPACITY",
		"OTEL_SERVICE_NAME", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_ENABLED"} {
		// Setenv registers the restore; defaults only apply to unset keys.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cli", cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 30, cfg.Capacity)
	assert.Equal(t, "parking-allocator", cfg.OTelServiceName)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)
	assert.True(t, cfg.OTelEnabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_MODE", "server")
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PARKING_CAPACITY", "12")
	t.Setenv("OTEL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 12, cfg.Capacity)
	assert.False(t, cfg.OTelEnabled)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown mode", "APP_MODE", "daemon"},
		{"non-numeric capacity", "PARKING_CAPACITY", "thirty"},
		{"negative capacity", "PARKING_CAPACITY", "-1"},
		{"bad otel flag", "OTEL_ENABLED", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_MODE", "cli")
			t.Setenv("PARKING_CAPACITY", "30")
			t.Setenv("OTEL_ENABLED", "true")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
