// File: fake/target.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sync"

	"github.com/momentics/hostbridge/api"
)

type listener struct {
	reg api.Registration
	fn  func(api.Event)
}

// Target is a recording api.EventTarget. Tests dispatch events into it
// and assert on listener registration and removal counts.
type Target struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]listener
	added     int
	removed   int
	closes    int
}

// NewTarget creates an empty target.
func NewTarget() *Target {
	return &Target{listeners: map[uint64]listener{}}
}

// AddListener implements api.EventTarget.
func (t *Target) AddListener(kind string, fn func(api.Event)) (api.Registration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.added++
	reg := api.Registration{Kind: kind, ID: t.nextID}
	t.listeners[reg.ID] = listener{reg: reg, fn: fn}
	return reg, nil
}

// RemoveListener implements api.EventTarget.
func (t *Target) RemoveListener(reg api.Registration) {
	t.mu.Lock()
	if _, ok := t.listeners[reg.ID]; ok {
		delete(t.listeners, reg.ID)
		t.removed++
	}
	t.mu.Unlock()
}

// Dispatch delivers an event to every listener attached for kind, in
// registration order, and reports how many listeners were invoked.
// Listeners run outside the target lock so they may re-enter the target.
func (t *Target) Dispatch(kind string, data any) int {
	t.mu.Lock()
	var fns []func(api.Event)
	for id := uint64(1); id <= t.nextID; id++ {
		l, ok := t.listeners[id]
		if ok && l.reg.Kind == kind {
			fns = append(fns, l.fn)
		}
	}
	t.mu.Unlock()
	ev := api.Event{Kind: kind, Data: data}
	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}

// Close implements api.Closable.
func (t *Target) Close() error {
	t.mu.Lock()
	t.closes++
	t.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (t *Target) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes > 0
}

// CloseCalls reports the number of Close calls.
func (t *Target) CloseCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}

// Active reports the number of live listeners for kind ("" for all).
func (t *Target) Active(kind string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, l := range t.listeners {
		if kind == "" || l.reg.Kind == kind {
			n++
		}
	}
	return n
}

// Added reports the total number of AddListener calls.
func (t *Target) Added() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.added
}

// Removed reports the number of RemoveListener calls that removed a
// live registration.
func (t *Target) Removed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removed
}
