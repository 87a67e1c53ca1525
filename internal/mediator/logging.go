package mediator

import (
	"context"
	"log/slog"
	"time"

	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
)

// LoggingBehavior logs the request name and payload before the inner stage
// and the elapsed time after it. It never alters the outcome.
//
// Requests carrying secrets should implement slog.LogValuer.
func LoggingBehavior() Behavior {
	return func(ctx context.Context, req any, next Next) (any, error) {
		name := RequestName(req)
		lg := obsctx.LoggerFromContext(ctx)
		lg.InfoContext(ctx, "handling request", slog.String("request", name), slog.Any("payload", req))

		start := time.Now()
		resp, err := next(ctx)
		elapsed := time.Since(start)

		attrs := []any{slog.String("request", name), slog.Int64("elapsed_ms", elapsed.Milliseconds())}
		if err != nil {
			lg.WarnContext(ctx, "request failed", append(attrs, slog.Any("error", err))...)
			return resp, err
		}
		lg.InfoContext(ctx, "handled request", attrs...)
		return resp, nil
	}
}
