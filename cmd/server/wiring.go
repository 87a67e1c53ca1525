package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/jobtrackr/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/jobtrackr/internal/adapter/repo/memory"
	"github.com/fairyhunter13/jobtrackr/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/jobtrackr/internal/app"
	"github.com/fairyhunter13/jobtrackr/internal/config"
	"github.com/fairyhunter13/jobtrackr/internal/domain"
	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
	"github.com/fairyhunter13/jobtrackr/internal/service/lockout"
)

type storage struct {
	app.Stores
	Users         domain.UserRepository
	RefreshTokens domain.RefreshTokenRepository
	pool          *pgxpool.Pool
}

func (s storage) pinger() app.Pinger {
	if s.pool == nil {
		return nil
	}
	return s.pool
}

func (s storage) close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// openStorage connects to Postgres and migrates it, or falls back to the
// in-memory store when DB_URL is empty.
func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	if !cfg.UsesPostgres() {
		slog.Warn("DB_URL not set; data lives in memory and is lost on restart")
		mem := memory.NewStore()
		return storage{
			Stores:        app.Stores{Companies: mem.Companies(), JobApplications: mem.JobApplications(), Statuses: mem.Statuses()},
			Users:         mem.Users(),
			RefreshTokens: mem.RefreshTokens(),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return storage{}, err
	}
	if err := app.WaitReady(ctx, "db", pool.Ping, cfg.DBConnectTimeout); err != nil {
		pool.Close()
		return storage{}, err
	}
	if err := postgres.Migrate(cfg.DBURL); err != nil {
		pool.Close()
		return storage{}, err
	}
	return storage{
		Stores: app.Stores{
			Companies:       postgres.NewCompanyRepo(pool),
			JobApplications: postgres.NewJobApplicationRepo(pool),
			Statuses:        postgres.NewStatusRepo(pool),
		},
		Users:         postgres.NewUserRepo(pool),
		RefreshTokens: postgres.NewRefreshTokenRepo(pool),
		pool:          pool,
	}, nil
}

type lockoutStore struct {
	tracker domain.LoginAttemptTracker
	rdb     *redis.Client
}

func (l lockoutStore) pinger() app.RedisClient {
	if l.rdb == nil {
		return nil
	}
	return l.rdb
}

func (l lockoutStore) close() {
	if l.rdb != nil {
		_ = l.rdb.Close()
	}
}

// openLockout keeps failed-login counters in Redis when REDIS_URL is set so
// every replica sees the same lockouts.
func openLockout(ctx context.Context, cfg config.Config) (lockoutStore, error) {
	policy := lockout.Policy{MaxFailedAttempts: cfg.LockoutMaxFailedAttempts, Duration: cfg.LockoutDuration}
	if cfg.RedisURL == "" {
		return lockoutStore{tracker: lockout.NewMemoryTracker(policy)}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return lockoutStore{}, fmt.Errorf("op=main.openLockout: %w", err)
	}
	rdb := redis.NewClient(opts)
	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := app.WaitReady(ctx, "redis", ping, 30*time.Second); err != nil {
		_ = rdb.Close()
		return lockoutStore{}, err
	}
	return lockoutStore{tracker: lockout.NewRedisLuaTracker(rdb, policy), rdb: rdb}, nil
}

// openEvents returns the domain event publisher. Broker trouble at startup
// is logged, not fatal; the circuit breaker keeps later writes fast.
func openEvents(ctx context.Context, cfg config.Config) (domain.EventPublisher, func()) {
	if !cfg.EventsEnabled() {
		slog.Info("KAFKA_BROKERS not set; domain events are not published")
		return redpanda.NoopPublisher{}, func() {}
	}
	breaker := obsctx.NewCircuitBreaker("redpanda", 5, 30*time.Second)
	p, err := redpanda.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic, breaker)
	if err != nil {
		slog.Error("redpanda producer init failed; events disabled", slog.Any("error", err))
		return redpanda.NoopPublisher{}, func() {}
	}
	topicCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := p.EnsureTopic(topicCtx, 3, 1); err != nil {
		slog.Warn("ensure events topic failed", slog.String("topic", cfg.EventsTopic), slog.Any("error", err))
	}
	return p, func() {
		if err := p.Close(); err != nil {
			slog.Error("failed to close event producer", slog.Any("error", err))
		}
	}
}
