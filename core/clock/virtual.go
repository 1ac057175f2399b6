package clock

import (
	"context"
	"sync"
	"time"
)

// Virtual is a manually-advanced Clock for deterministic tests. Sleep
// returns as soon as the clock has been advanced past the requested
// duration, or immediately if ctx is already cancelled.
type Virtual struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter
}

type waiter struct {
	deadline time.Time
	done     chan struct{}
}

// NewVirtual returns a Virtual clock starting at t0.
func NewVirtual(t0 time.Time) *Virtual {
	return &Virtual{now: t0}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) Sleep(ctx context.Context, d time.Duration) error {
	v.mu.Lock()
	deadline := v.now.Add(d)
	done := make(chan struct{})
	v.waiters = append(v.waiters, waiter{deadline: deadline, done: done})
	v.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Advance moves the virtual clock forward by d, waking any waiter whose
// deadline has now passed.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = v.now.Add(d)
	remaining := v.waiters[:0]
	for _, w := range v.waiters {
		if !w.deadline.After(v.now) {
			close(w.done)
		} else {
			remaining = append(remaining, w)
		}
	}
	v.waiters = remaining
}
