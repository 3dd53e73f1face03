// File: timers/timeout.go
// Package timers implements the one-shot timeout handle.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timers

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hostbridge/api"
)

type timeoutState int

const (
	timeoutScheduled timeoutState = iota
	timeoutFired
	timeoutStopped
	timeoutForgotten
)

// Timeout schedules fn to run once after at least delay. Stop the
// handle to suppress the fire; Forget to let the callback outlive the
// handle. Exactly one of {fire, stop} happens.
type Timeout struct {
	mu    sync.Mutex
	host  api.Schedulable
	id    uint64
	state timeoutState
}

// NewTimeout schedules the callback. A host refusal to schedule is
// fatal to the handle and surfaces here, not later.
func NewTimeout(host api.Schedulable, delay time.Duration, fn func()) (*Timeout, error) {
	t := &Timeout{host: host}
	id, err := host.Schedule(delay, func() {
		t.mu.Lock()
		if t.state == timeoutStopped {
			// Cancelled after the host already queued the fire.
			t.mu.Unlock()
			return
		}
		if t.state == timeoutScheduled {
			t.state = timeoutFired
		}
		t.mu.Unlock()
		fn()
	})
	if err != nil {
		return nil, fmt.Errorf("timers: %w: %v", api.ErrScheduleFailed, err)
	}
	t.mu.Lock()
	t.id = id
	t.mu.Unlock()
	return t, nil
}

// Stop cancels the pending fire. After Stop returns, the callback will
// not run. No-op once fired, stopped or forgotten.
func (t *Timeout) Stop() {
	t.mu.Lock()
	if t.state != timeoutScheduled {
		t.mu.Unlock()
		return
	}
	t.state = timeoutStopped
	id := t.id
	t.mu.Unlock()
	t.host.Cancel(id)
}

// Forget detaches the callback from the handle: it stays scheduled and
// will fire even though the handle is discarded. Returns the native id
// so a caller can still cancel through the host directly.
func (t *Timeout) Forget() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == timeoutScheduled {
		t.state = timeoutForgotten
	}
	return t.id
}

// Fired reports whether the callback has run.
func (t *Timeout) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == timeoutFired
}
