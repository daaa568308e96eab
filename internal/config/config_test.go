package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "./data/ummalqura.db", cfg.DatabasePath)
	assert.Equal(t, TableSourceEmbedded, cfg.TableSource)
	assert.Equal(t, 90, cfg.MaxRangeDays)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "Asia/Riyadh", cfg.Location().String())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv()

	os.Setenv("PORT", "3000")
	os.Setenv("ENV", "production")
	os.Setenv("DATABASE_PATH", "/data/test.db")
	os.Setenv("API_KEY", "secret-key-123")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	os.Setenv("TABLE_SOURCE", "file")
	os.Setenv("TABLE_PATH", "/etc/ummalqura.properties")
	os.Setenv("TIMEZONE", "UTC")
	os.Setenv("MAX_RANGE_DAYS", "366")
	defer clearEnv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "secret-key-123", cfg.APIKey)
	assert.Equal(t, TableSourceFile, cfg.TableSource)
	assert.Equal(t, "/etc/ummalqura.properties", cfg.TablePath)
	assert.Equal(t, 366, cfg.MaxRangeDays)
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv()
	os.Setenv("TABLE_SOURCE", "s3")
	defer clearEnv()

	_, err := Load()
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		Port:            8080,
		Env:             EnvDevelopment,
		ShutdownTimeout: 5 * time.Second,
		DatabasePath:    "./data/test.db",
		LogLevel:        "info",
		LogFormat:       "text",
		TableSource:     TableSourceEmbedded,
		Timezone:        "UTC",
		MaxRangeDays:    90,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid development config", func(*Config) {}, false},
		{"valid production config", func(c *Config) { c.Env = EnvProduction; c.APIKey = "required-in-prod" }, false},
		{"production requires API key", func(c *Config) { c.Env = EnvProduction }, true},
		{"invalid port - too low", func(c *Config) { c.Port = 0 }, true},
		{"invalid port - too high", func(c *Config) { c.Port = 70000 }, true},
		{"invalid environment", func(c *Config) { c.Env = "invalid" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"database table source", func(c *Config) { c.TableSource = TableSourceDatabase }, false},
		{"file source needs path", func(c *Config) { c.TableSource = TableSourceFile }, true},
		{"file source with path", func(c *Config) { c.TableSource = TableSourceFile; c.TablePath = "t.properties" }, false},
		{"unknown table source", func(c *Config) { c.TableSource = "http" }, true},
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"empty timezone", func(c *Config) { c.Timezone = "" }, true},
		{"range too small", func(c *Config) { c.MaxRangeDays = 0 }, true},
		{"range too large", func(c *Config) { c.MaxRangeDays = MaxRangeDaysLimit + 1 }, true},
		{"negative shutdown", func(c *Config) { c.ShutdownTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: EnvDevelopment}
	assert.True(t, cfg.IsDevelopment())

	cfg.Env = EnvProduction
	assert.False(t, cfg.IsDevelopment())
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Env: EnvProduction}
	assert.True(t, cfg.IsProduction())

	cfg.Env = EnvDevelopment
	assert.False(t, cfg.IsProduction())
}

// clearEnv removes all config-related environment variables
func clearEnv() {
	vars := []string{
		"PORT", "ENV", "SHUTDOWN_TIMEOUT_SECONDS", "DATABASE_PATH", "API_KEY",
		"LOG_LEVEL", "LOG_FORMAT",
		"TABLE_SOURCE", "TABLE_PATH", "TIMEZONE", "MAX_RANGE_DAYS",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
