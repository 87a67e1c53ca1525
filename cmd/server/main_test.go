package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/jobtrackr/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		AppEnv:                    "test",
		JWTKey:                    "0123456789abcdef0123456789abcdef",
		JWTIssuer:                 "jobtrackr",
		JWTAudience:               "jobtrackr",
		JWTAccessTokenMinutes:     15,
		JWTRefreshTokenDays:       7,
		RefreshTokenSweepInterval: time.Hour,
		ServerShutdownTimeout:     time.Second,
	}
}

func TestRun_ReturnsStartupErrors(t *testing.T) {
	bad := validConfig()
	bad.JWTKey = "short"

	missingSeeds := validConfig()
	missingSeeds.StatusSeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{name: "invalid configuration", cfg: bad, want: "JWT_KEY must be at least 32 characters"},
		{name: "seed file after storage opened", cfg: missingSeeds, want: "status seed file invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, run(tt.cfg), tt.want)
		})
	}
}
