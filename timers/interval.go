// File: timers/interval.go
// Package timers implements the repeating interval handle.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timers

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hostbridge/api"
)

// Interval runs fn every period, layered on the host's one-shot timer.
//
// Each fire re-schedules the next occurrence and stores the fresh
// native id before invoking fn. The host may issue a new id on every
// reschedule; storing it first guarantees that a Stop issued from
// inside fn cancels the live id, not a stale one, and therefore
// suppresses the next tick.
type Interval struct {
	mu      sync.Mutex
	host    api.Schedulable
	period  time.Duration
	fn      func()
	id      uint64
	stopped bool
	lastErr error
}

// NewInterval schedules the first occurrence. A host refusal to
// schedule is surfaced immediately.
func NewInterval(host api.Schedulable, period time.Duration, fn func()) (*Interval, error) {
	iv := &Interval{host: host, period: period, fn: fn}
	if err := iv.arm(); err != nil {
		return nil, err
	}
	return iv, nil
}

func (iv *Interval) arm() error {
	id, err := iv.host.Schedule(iv.period, iv.fire)
	if err != nil {
		return fmt.Errorf("timers: %w: %v", api.ErrScheduleFailed, err)
	}
	iv.mu.Lock()
	if iv.stopped {
		iv.mu.Unlock()
		iv.host.Cancel(id)
		return nil
	}
	iv.id = id
	iv.mu.Unlock()
	return nil
}

func (iv *Interval) fire() {
	iv.mu.Lock()
	if iv.stopped {
		iv.mu.Unlock()
		return
	}
	iv.mu.Unlock()

	// Reschedule strictly before the user callback runs.
	if err := iv.arm(); err != nil {
		// A reschedule refusal is fatal to this instance; the callback
		// still runs for the fire the host already delivered.
		iv.mu.Lock()
		iv.stopped = true
		iv.lastErr = err
		iv.mu.Unlock()
	}
	iv.fn()
}

// Stop suppresses all further fires, including the one already
// re-scheduled when called from inside the callback. Idempotent.
func (iv *Interval) Stop() {
	iv.mu.Lock()
	if iv.stopped {
		iv.mu.Unlock()
		return
	}
	iv.stopped = true
	id := iv.id
	iv.mu.Unlock()
	iv.host.Cancel(id)
}

// Err reports the scheduling failure that stopped the interval, if any.
func (iv *Interval) Err() error {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.lastErr
}

// Stopped reports whether the interval can still fire.
func (iv *Interval) Stopped() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.stopped
}
