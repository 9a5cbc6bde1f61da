// Package resttimer is the engine's rest-timer collaborator: it receives
// one-way start/cancel signals and raises an expiry callback the
// presentation layer turns into a notification. The engine never reads
// timer state back.
package resttimer

import (
	"log/slog"
	"sync"
	"time"
)

// Timer runs at most one pending rest countdown. Starting a new rest
// replaces the pending one; a session start cancels it outright.
type Timer struct {
	mu       sync.Mutex
	pending  *time.Timer
	onExpire func(d time.Duration)
	log      *slog.Logger
}

// New creates a Timer. onExpire is invoked from the timer goroutine when a
// rest period elapses uncancelled; nil means expiry is only logged.
func New(onExpire func(d time.Duration), log *slog.Logger) *Timer {
	return &Timer{onExpire: onExpire, log: log}
}

// StartRest begins a countdown, replacing any pending one.
func (t *Timer) StartRest(d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
	}
	t.pending = time.AfterFunc(d, func() {
		t.mu.Lock()
		t.pending = nil
		t.mu.Unlock()

		t.log.Debug("rest period elapsed", "duration", d.String())
		if t.onExpire != nil {
			t.onExpire(d)
		}
	})
	t.log.Debug("rest started", "duration", d.String())
}

// CancelRest stops any pending countdown.
func (t *Timer) CancelRest() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Pending reports whether a countdown is currently running.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
