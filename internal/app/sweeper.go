package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/jobtrackr/internal/adapter/observability"
	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// RefreshTokenSweeper periodically deletes expired refresh tokens.
type RefreshTokenSweeper struct {
	tokens   domain.RefreshTokenRepository
	interval time.Duration
	now      func() time.Time
}

// NewRefreshTokenSweeper returns nil when tokens is nil; Run on a nil
// sweeper is a no-op.
func NewRefreshTokenSweeper(tokens domain.RefreshTokenRepository, interval time.Duration) *RefreshTokenSweeper {
	if tokens == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &RefreshTokenSweeper{tokens: tokens, interval: interval, now: time.Now}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *RefreshTokenSweeper) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh token sweeper stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *RefreshTokenSweeper) sweepOnce(ctx context.Context) int64 {
	ctx, span := otel.Tracer("tokens.sweeper").Start(ctx, "RefreshTokenSweeper.sweepOnce")
	defer span.End()

	n, err := s.tokens.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		span.RecordError(err)
		slog.Error("refresh token sweep failed", slog.Any("error", err))
		return 0
	}
	span.SetAttributes(attribute.Int64("tokens.deleted", n))
	observability.RecordRefreshTokensSwept(n)
	if n > 0 {
		slog.Info("expired refresh tokens deleted", slog.Int64("count", n))
	}
	return n
}
