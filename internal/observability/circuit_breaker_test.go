package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerState_String(t *testing.T) {
	cases := map[CircuitBreakerState]string{
		StateClosed:             "closed",
		StateOpen:               "open",
		StateHalfOpen:           "half-open",
		CircuitBreakerState(99): "unknown",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("events", 2, time.Minute)
	cb.now = func() time.Time { return now }

	assert.True(t, cb.Allow())
	cb.Failure()
	assert.Equal(t, StateClosed, cb.State())
	cb.Failure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())

	now = now.Add(time.Minute)
	assert.True(t, cb.Allow(), "trial after cool-down")
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.False(t, cb.Allow(), "only one trial in flight")

	cb.Success()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("events", 1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.Failure()
	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow())
	cb.Failure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_DisabledAndNil(t *testing.T) {
	cb := NewCircuitBreaker("off", 0, time.Minute)
	for i := 0; i < 5; i++ {
		cb.Failure()
	}
	assert.True(t, cb.Allow())

	var nilBreaker *CircuitBreaker
	assert.True(t, nilBreaker.Allow())
	nilBreaker.Failure()
	nilBreaker.Success()
	assert.Equal(t, StateClosed, nilBreaker.State())
}
