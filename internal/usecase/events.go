package usecase

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
)

// publish announces a committed change. Failures are logged only: the write
// already succeeded and the caller must still see success.
func publish(ctx domain.Context, p domain.EventPublisher, eventType string, id uuid.UUID, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, domain.NewEvent(eventType, id, payload)); err != nil {
		obsctx.LoggerFromContext(ctx).Warn("event publish failed",
			slog.String("event", eventType),
			slog.String("aggregate_id", id.String()),
			slog.Any("error", err))
	}
}
