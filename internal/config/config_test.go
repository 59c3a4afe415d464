package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes keys for the duration of the test. envconfig treats a set
// but empty variable as a value, so t.Setenv(k, "") would bypass defaults.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if prev, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, prev) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "LOG_LEVEL", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_MAX_RETRIES",
		"AWS_REGION", "PROGRAMS_S3_BUCKET", "CORS_ALLOWED_ORIGINS", "PUBLIC_BASE_URL")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "eu-central-1", cfg.AWSRegion)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 5, cfg.DBMaxRetries)
	assert.False(t, cfg.Database().Configured())
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	unsetEnv(t, "DATABASE_URL")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "programs_test")
	t.Setenv("DB_MAX_RETRIES", "2")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_AUDIENCE", "programs")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "s3cr3t", cfg.JWTSecret)
	assert.Equal(t, "programs", cfg.JWTAudience)
	assert.Equal(t, "https://cdn.example.com", cfg.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)

	dbc := cfg.Database()
	assert.True(t, dbc.Configured())
	assert.Equal(t, "db.internal", dbc.Host)
	assert.Equal(t, 6543, dbc.Port)
	assert.Equal(t, "programs_test", dbc.DBName)
	assert.Equal(t, 2, dbc.MaxRetries)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}
