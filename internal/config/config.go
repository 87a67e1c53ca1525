// Package config defines configuration parsing and helpers.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`
	// DBURL selects Postgres; empty runs on the in-memory store.
	DBURL            string        `env:"DB_URL"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"30s"`
	// RedisURL backs the login lockout store; empty keeps lockouts in memory.
	RedisURL string `env:"REDIS_URL"`
	// KafkaBrokers enables domain event publishing when set.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	EventsTopic  string   `env:"EVENTS_TOPIC" envDefault:"jobtrackr.events"`

	JWTKey                string `env:"JWT_KEY"`
	JWTIssuer             string `env:"JWT_ISSUER" envDefault:"jobtrackr"`
	JWTAudience           string `env:"JWT_AUDIENCE" envDefault:"jobtrackr-clients"`
	JWTAccessTokenMinutes int    `env:"JWT_ACCESS_TOKEN_MINUTES" envDefault:"15"`
	JWTRefreshTokenDays   int    `env:"JWT_REFRESH_TOKEN_DAYS" envDefault:"7"`

	AuthRequired              bool          `env:"AUTH_REQUIRED" envDefault:"false"`
	AuthRequireConfirmedEmail bool          `env:"AUTH_REQUIRE_CONFIRMED_EMAIL" envDefault:"false"`
	LockoutMaxFailedAttempts  int           `env:"LOCKOUT_MAX_FAILED_ATTEMPTS" envDefault:"5"`
	LockoutDuration           time.Duration `env:"LOCKOUT_DURATION" envDefault:"5m"`

	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"jobtrackr"`

	// StatusSeedFile optionally overrides the built-in statuses (YAML).
	StatusSeedFile            string        `env:"STATUS_SEED_FILE"`
	RefreshTokenSweepInterval time.Duration `env:"REFRESH_TOKEN_SWEEP_INTERVAL" envDefault:"1h"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// Validate checks the JWT settings; the server refuses to start otherwise.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTKey) < 32 {
		errs = append(errs, errors.New("JWT_KEY must be at least 32 characters"))
	}
	if strings.TrimSpace(c.JWTIssuer) == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required"))
	}
	if strings.TrimSpace(c.JWTAudience) == "" {
		errs = append(errs, errors.New("JWT_AUDIENCE is required"))
	}
	if c.JWTAccessTokenMinutes < 1 || c.JWTAccessTokenMinutes > 1440 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_MINUTES must be between 1 and 1440"))
	}
	if c.JWTRefreshTokenDays < 1 || c.JWTRefreshTokenDays > 60 {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_DAYS must be between 1 and 60"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("op=config.Validate: %w", err)
	}
	return nil
}

// AccessTokenTTL is the lifetime of issued access tokens.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTAccessTokenMinutes) * time.Minute
}

// RefreshTokenTTL is the lifetime of issued refresh tokens.
func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWTRefreshTokenDays) * 24 * time.Hour
}

// UsesPostgres reports whether a database URL is configured.
func (c Config) UsesPostgres() bool { return strings.TrimSpace(c.DBURL) != "" }

// EventsEnabled reports whether brokers are configured.
func (c Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }
