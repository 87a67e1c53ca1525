package lockout

import (
	"context"
	"sync"
	"time"
)

// MemoryTracker is the single-process tracker used when no Redis is
// configured.
type MemoryTracker struct {
	mu       sync.Mutex
	policy   Policy
	now      func() time.Time
	failures map[string]memoryEntry
	locked   map[string]time.Time
}

type memoryEntry struct {
	count    int
	lastSeen time.Time
}

// NewMemoryTracker constructs a MemoryTracker.
func NewMemoryTracker(policy Policy) *MemoryTracker {
	return &MemoryTracker{
		policy:   policy,
		now:      time.Now,
		failures: map[string]memoryEntry{},
		locked:   map[string]time.Time{},
	}
}

// LockedFor returns the remaining lockout for key.
func (t *MemoryTracker) LockedFor(_ context.Context, key string) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked(key), nil
}

func (t *MemoryTracker) remainingLocked(key string) time.Duration {
	until, ok := t.locked[key]
	if !ok {
		return 0
	}
	left := until.Sub(t.now())
	if left <= 0 {
		delete(t.locked, key)
		return 0
	}
	return left
}

// RecordFailure counts a failed attempt and reports whether the account is
// now locked.
func (t *MemoryTracker) RecordFailure(_ context.Context, key string) (bool, error) {
	if !t.policy.enabled() {
		return false, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remainingLocked(key) > 0 {
		return true, nil
	}
	now := t.now()
	e := t.failures[key]
	if now.Sub(e.lastSeen) > t.policy.window() {
		e.count = 0
	}
	e.count++
	e.lastSeen = now
	if e.count >= t.policy.MaxFailedAttempts {
		delete(t.failures, key)
		t.locked[key] = now.Add(t.policy.Duration)
		return true, nil
	}
	t.failures[key] = e
	return false, nil
}

// Reset forgets prior failures after a successful sign-in.
func (t *MemoryTracker) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, key)
	return nil
}
