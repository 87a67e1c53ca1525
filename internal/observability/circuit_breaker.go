package observability

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitBreakerState represents the state of the circuit breaker
type CircuitBreakerState int

const (
	// StateClosed lets every call through.
	StateClosed CircuitBreakerState = iota
	// StateOpen rejects calls until the cool-down elapses.
	StateOpen
	// StateHalfOpen lets a single trial call through.
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops calling a dependency after consecutive failures and
// tries it again once the cool-down has passed.
type CircuitBreaker struct {
	mu sync.Mutex

	name        string
	maxFailures int
	coolDown    time.Duration
	now         func() time.Time

	state        CircuitBreakerState
	failures     int
	openedAt     time.Time
	trialPending bool
}

// NewCircuitBreaker creates a breaker that opens after maxFailures
// consecutive failures. A non-positive maxFailures disables it.
func NewCircuitBreaker(name string, maxFailures int, coolDown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{name: name, maxFailures: maxFailures, coolDown: coolDown, now: time.Now}
}

// Allow reports whether a call may proceed.
func (cb *CircuitBreaker) Allow() bool {
	if cb == nil || cb.maxFailures <= 0 {
		return true
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.coolDown {
			return false
		}
		cb.state = StateHalfOpen
		cb.trialPending = true
		slog.Info("circuit breaker half-open", slog.String("breaker", cb.name))
		return true
	case StateHalfOpen:
		// one trial at a time
		return false
	default:
		return true
	}
}

// Success records a successful call and closes the breaker.
func (cb *CircuitBreaker) Success() {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != StateClosed {
		slog.Info("circuit breaker closed", slog.String("breaker", cb.name))
	}
	cb.state = StateClosed
	cb.failures = 0
	cb.trialPending = false
}

// Failure records a failed call.
func (cb *CircuitBreaker) Failure() {
	if cb == nil || cb.maxFailures <= 0 {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		if cb.state != StateOpen {
			slog.Warn("circuit breaker opened",
				slog.String("breaker", cb.name),
				slog.Int("failures", cb.failures))
		}
		cb.state = StateOpen
		cb.openedAt = cb.now()
		cb.trialPending = false
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	if cb == nil {
		return StateClosed
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
