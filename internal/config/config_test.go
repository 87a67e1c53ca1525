package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.IsProd())
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.UsesPostgres())
	assert.False(t, cfg.EventsEnabled())
	assert.Equal(t, "jobtrackr.events", cfg.EventsTopic)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL())
	assert.Equal(t, 5, cfg.LockoutMaxFailedAttempts)
	assert.Equal(t, 5*time.Minute, cfg.LockoutDuration)
	assert.False(t, cfg.AuthRequired)
}

func Test_Load_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_URL", "postgres://u:p@db:5432/jobtrackr")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("JWT_ACCESS_TOKEN_MINUTES", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL())
}

func Test_Load_ErrorOnBadDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=config.Load")
}

func Test_Validate(t *testing.T) {
	valid := Config{
		JWTKey:                strings.Repeat("k", 32),
		JWTIssuer:             "jobtrackr",
		JWTAudience:           "clients",
		JWTAccessTokenMinutes: 15,
		JWTRefreshTokenDays:   7,
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"short key":         func(c *Config) { c.JWTKey = "short" },
		"blank issuer":      func(c *Config) { c.JWTIssuer = " " },
		"blank audience":    func(c *Config) { c.JWTAudience = "" },
		"access too long":   func(c *Config) { c.JWTAccessTokenMinutes = 1441 },
		"access zero":       func(c *Config) { c.JWTAccessTokenMinutes = 0 },
		"refresh too long":  func(c *Config) { c.JWTRefreshTokenDays = 61 },
		"refresh too short": func(c *Config) { c.JWTRefreshTokenDays = 0 },
	}
	for name, edit := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			edit(&c)
			assert.Error(t, c.Validate())
		})
	}
}
