package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLog redirects the global logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "NODE_ENV", "PORT", "APP_PORT", "JWT_SECRET", "JWT_EXPIRES_IN",
		"ALLOWED_ORIGINS", "BCRYPT_COST", "DB_TIMEOUT", "DB_HOST", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "DB_PORT", "EVENTS_ENABLED",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.EventsEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("EVENTS_ENABLED", "yes")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.EventsEnabled)
}

func TestFromEnv_TokenLifetimeFormats(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":       7 * 24 * time.Hour,
		"3600":     time.Hour,
		"2h":       2 * time.Hour,
		"90m":      90 * time.Minute,
		"12 hours": 12 * time.Hour,
		"1.5d":     36 * time.Hour,
		"2W":       14 * 24 * time.Hour,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			clearEnv(t)
			buf := captureLog(t)
			t.Setenv("JWT_EXPIRES_IN", in)

			assert.Equal(t, want, FromEnv().TokenTTL)
			assert.Empty(t, buf.String())
		})
	}
}

func TestFromEnv_InvalidDurationFallsBack(t *testing.T) {
	for _, in := range []string{"soon", "7 fortnights", "-5", "0", "d"} {
		t.Run(in, func(t *testing.T) {
			clearEnv(t)
			buf := captureLog(t)
			t.Setenv("JWT_EXPIRES_IN", in)

			assert.Equal(t, 24*time.Hour, FromEnv().TokenTTL)
			assert.Contains(t, buf.String(), `"var":"JWT_EXPIRES_IN"`)
			assert.Contains(t, buf.String(), "unparseable duration")
		})
	}
}

func TestValidate_ReportsMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db")

	missing := Validate(FromEnv())

	require.NotContains(t, missing, "DB_HOST")
	assert.Contains(t, missing, "JWT_SECRET")
	assert.Contains(t, missing, "DB_NAME")
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()

	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfig_Methods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")

	cfg := LoadCacheConfig()

	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}
