package mediator

import (
	"context"
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// Validator checks one request type. It returns rule failures, or an error
// when it could not run (for example a store lookup failed). Validators must
// only read.
type Validator[Req any] interface {
	Validate(ctx context.Context, req Req) ([]domain.FieldError, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc[Req any] func(ctx context.Context, req Req) ([]domain.FieldError, error)

// Validate calls f.
func (f ValidatorFunc[Req]) Validate(ctx context.Context, req Req) ([]domain.FieldError, error) {
	return f(ctx, req)
}

type validateEntry func(ctx context.Context, req any) ([]domain.FieldError, error)

// Validators holds the validators of every request type.
type Validators struct {
	byType map[reflect.Type][]validateEntry
}

// NewValidators returns an empty registry.
func NewValidators() *Validators {
	return &Validators{byType: make(map[reflect.Type][]validateEntry)}
}

// AddValidator appends v to the validators of Req.
func AddValidator[Req any](vs *Validators, v Validator[Req]) {
	t := reflect.TypeFor[Req]()
	vs.byType[t] = append(vs.byType[t], func(ctx context.Context, req any) ([]domain.FieldError, error) {
		return v.Validate(ctx, req.(Req))
	})
}

// ValidationBehavior runs every validator of the request concurrently and
// fails the dispatch with one *domain.ValidationError when any rule fails.
// The next stage runs only when all validators pass.
func ValidationBehavior(vs *Validators) Behavior {
	return func(ctx context.Context, req any, next Next) (any, error) {
		entries := vs.byType[reflect.TypeOf(req)]
		if len(entries) == 0 {
			return next(ctx)
		}
		results := make([][]domain.FieldError, len(entries))
		g, gctx := errgroup.WithContext(ctx)
		for i, validate := range entries {
			g.Go(func() error {
				failures, err := validate(gctx, req)
				if err != nil {
					return err
				}
				results[i] = failures
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("op=mediator.validate %s: %w", RequestName(req), err)
		}
		var failures []domain.FieldError
		for _, r := range results {
			failures = append(failures, r...)
		}
		if len(failures) > 0 {
			return nil, domain.NewValidationError(failures)
		}
		return next(ctx)
	}
}
