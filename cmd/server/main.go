// Command server starts the jobtrackr HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpserver "github.com/fairyhunter13/jobtrackr/internal/adapter/httpserver"
	"github.com/fairyhunter13/jobtrackr/internal/adapter/observability"
	"github.com/fairyhunter13/jobtrackr/internal/app"
	"github.com/fairyhunter13/jobtrackr/internal/config"
	"github.com/fairyhunter13/jobtrackr/internal/service/auth"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// run owns every resource of the process. It returns instead of exiting so
// deferred cleanup always runs.
func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage init failed: %w", err)
	}
	defer st.close()

	lk, err := openLockout(ctx, cfg)
	if err != nil {
		return fmt.Errorf("lockout store init failed: %w", err)
	}
	defer lk.close()

	events, closeEvents := openEvents(ctx, cfg)
	defer closeEvents()

	// Statuses
	seeds, err := loadStatusSeeds(cfg.StatusSeedFile)
	if err != nil {
		return fmt.Errorf("status seed file invalid: %w", err)
	}
	if _, err := usecase.NewStatusService(st.Statuses).Seed(ctx, seeds); err != nil {
		return fmt.Errorf("status seeding failed: %w", err)
	}

	go app.NewRefreshTokenSweeper(st.RefreshTokens, cfg.RefreshTokenSweepInterval).Run(ctx)

	issuer := auth.NewJWTIssuer(cfg.JWTKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL())
	hasher := auth.NewArgon2Hasher()
	identity := usecase.IdentityService{
		Users:                 st.Users,
		Tokens:                st.RefreshTokens,
		Attempts:              lk.tracker,
		Hasher:                hasher,
		Issuer:                issuer,
		Events:                events,
		Policy:                usecase.DefaultPasswordPolicy,
		RefreshTTL:            cfg.RefreshTokenTTL(),
		RequireConfirmedEmail: cfg.AuthRequireConfirmedEmail,
		DecoyHash:             hasher.DecoyHash(),
	}

	m := app.BuildMediator(st.Stores, events)
	dbCheck, redisCheck := app.BuildReadinessChecks(st.pinger(), lk.pinger())
	srv := httpserver.NewServer(m, identity, dbCheck, redisCheck)
	handler := app.BuildRouter(cfg, srv, issuer)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.Bool("auth_required", cfg.AuthRequired))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var serveErr error
	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancelShutdown()
	_ = srvHTTP.Shutdown(shutdownCtx)
	return serveErr
}
