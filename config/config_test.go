package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, vars map[string]string) (*Config, error) {
	t.Helper()
	return Parse(env.Options{Environment: vars})
}

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(t, map[string]string{"JWT_SECRET": "s3cret", "DB_URL": "postgres://localhost/kash"})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.True(t, cfg.RequireModeration)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.GoogleEnabled())
}

func TestParseOverrides(t *testing.T) {
	cfg, err := parse(t, map[string]string{
		"JWT_SECRET":         "s3cret",
		"STORE_DRIVER":       "SQLite",
		"CORS_ORIGIN":        "https://a.example,https://b.example",
		"REQUIRE_MODERATION": "false",
		"CACHE_TTL":          "90s",
		"AUTOSAVE_SPEC":      "off",
	})
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.RequireModeration)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Empty(t, cfg.AutosaveSpec)
}

func TestParseRequiresSecrets(t *testing.T) {
	_, err := parse(t, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_URL")

	_, err = parse(t, map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "cassandra"})
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")

	_, err = parse(t, map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "mongo"})
	assert.NoError(t, err)
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := parse(t, map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "sqlite", "JWT_TTL": "soon"})
	assert.ErrorContains(t, err, "parse env")
}
