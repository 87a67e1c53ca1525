// Package mediator dispatches typed commands and queries to their single
// handler through an ordered chain of behaviors.
//
// Behaviors are composed from the explicit list given to New; the first
// behavior is the outermost. A typical chain is
//
//	mediator.New(
//		mediator.InstrumentationBehavior(observe),
//		mediator.ValidationBehavior(validators),
//		mediator.LoggingBehavior(),
//	)
//
// so validation always runs before logging and timing.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// ErrNoHandler is returned when a request type has no registered handler.
var ErrNoHandler = errors.New("no handler registered")

// Unit is the response of commands that return nothing.
type Unit struct{}

// Next invokes the rest of the chain.
type Next func(ctx context.Context) (any, error)

// Behavior wraps every dispatch. It must call next at most once and may
// short-circuit by returning without calling it.
type Behavior func(ctx context.Context, req any, next Next) (any, error)

// Handler executes one request type.
type Handler[Req, Resp any] interface {
	Handle(ctx context.Context, req Req) (Resp, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Handle calls f.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

type handlerEntry func(ctx context.Context, req any) (any, error)

// Mediator routes requests by their concrete type. Registration happens at
// startup; Send is safe for concurrent use afterwards.
type Mediator struct {
	handlers  map[reflect.Type]handlerEntry
	behaviors []Behavior
}

// New builds a Mediator with behaviors applied outermost first.
func New(behaviors ...Behavior) *Mediator {
	return &Mediator{handlers: make(map[reflect.Type]handlerEntry), behaviors: behaviors}
}

// Register binds h as the handler of Req. Registering the same request type
// twice panics.
func Register[Req, Resp any](m *Mediator, h Handler[Req, Resp]) {
	t := reflect.TypeFor[Req]()
	if _, dup := m.handlers[t]; dup {
		panic(fmt.Sprintf("mediator: handler for %s already registered", t))
	}
	m.handlers[t] = func(ctx context.Context, req any) (any, error) {
		return h.Handle(ctx, req.(Req))
	}
}

// Send dispatches req through the behavior chain to its handler.
func Send[Resp any](ctx context.Context, m *Mediator, req any) (Resp, error) {
	var zero Resp
	h, ok := m.handlers[reflect.TypeOf(req)]
	if !ok {
		return zero, fmt.Errorf("op=mediator.Send: %w for %T", ErrNoHandler, req)
	}
	next := Next(func(ctx context.Context) (any, error) { return h(ctx, req) })
	for i := len(m.behaviors) - 1; i >= 0; i-- {
		b, inner := m.behaviors[i], next
		next = func(ctx context.Context) (any, error) { return b(ctx, req, inner) }
	}
	out, err := next(ctx)
	if err != nil {
		return zero, err
	}
	resp, ok := out.(Resp)
	if !ok {
		return zero, fmt.Errorf("op=mediator.Send: handler for %T returned %T, want %T", req, out, zero)
	}
	return resp, nil
}

// RequestName is the short type name of req, used in logs and metrics.
func RequestName(req any) string {
	t := reflect.TypeOf(req)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
