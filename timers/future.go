// File: timers/future.go
// Package timers implements the future-shaped timeout.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timers

import (
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hostbridge/api"
)

// TimeoutFuture resolves once after at least the given delay. It is the
// completion-bridge instantiation for the host timer: the "listener" is
// the scheduled callback itself, attached at construction so a host
// refusal surfaces immediately.
type TimeoutFuture struct {
	mu     sync.Mutex
	host   api.Schedulable
	id     uint64
	wake   api.Waker
	fired  bool
	closed bool
}

// NewTimeoutFuture schedules the fire.
func NewTimeoutFuture(host api.Schedulable, delay time.Duration) (*TimeoutFuture, error) {
	f := &TimeoutFuture{host: host}
	id, err := host.Schedule(delay, func() {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return
		}
		f.fired = true
		wake := f.wake
		f.mu.Unlock()
		if wake != nil {
			wake()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("timers: %w: %v", api.ErrScheduleFailed, err)
	}
	f.mu.Lock()
	f.id = id
	f.mu.Unlock()
	return f, nil
}

// Poll implements api.Future. The elapsed fire never carries an error.
func (f *TimeoutFuture) Poll(wake api.Waker) (api.Result[struct{}], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fired {
		return api.Result[struct{}]{}, true
	}
	if !f.closed {
		f.wake = wake
	}
	return api.Result[struct{}]{}, false
}

// Close implements api.Future: an unfired timeout is cancelled at the
// host so the orphaned fire can never wake anything. Idempotent.
func (f *TimeoutFuture) Close() error {
	f.mu.Lock()
	if f.closed || f.fired {
		f.closed = true
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.wake = nil
	id := f.id
	f.mu.Unlock()
	f.host.Cancel(id)
	return nil
}
