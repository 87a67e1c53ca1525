package mediator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// Outcome labels reported by InstrumentationBehavior.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeNotFound   = "not_found"
	OutcomeDomain     = "domain_error"
	OutcomeError      = "error"
)

// Observer receives one observation per dispatch.
type Observer func(request, outcome string, elapsed time.Duration)

// InstrumentationBehavior wraps the dispatch in a span and reports its
// outcome and duration to observe. A nil observe only traces.
func InstrumentationBehavior(observe Observer) Behavior {
	return func(ctx context.Context, req any, next Next) (any, error) {
		name := RequestName(req)
		ctx, span := otel.Tracer("mediator").Start(ctx, "mediator.Send "+name)
		defer span.End()
		span.SetAttributes(attribute.String("mediator.request", name))

		start := time.Now()
		resp, err := next(ctx)
		outcome := Outcome(err)
		span.SetAttributes(attribute.String("mediator.outcome", outcome))
		if outcome == OutcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "dispatch failed")
		}
		if observe != nil {
			observe(name, outcome, time.Since(start))
		}
		return resp, err
	}
}

// Outcome classifies a dispatch error into one of the outcome labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrDomain):
		return OutcomeDomain
	default:
		return OutcomeError
	}
}
