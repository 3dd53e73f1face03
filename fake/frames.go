// File: fake/frames.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import "sync"

// Frames is a fake api.FrameSource. Fire delivers one frame: every
// callback requested before the call runs once with the given timestamp,
// matching host animation-frame semantics.
type Frames struct {
	mu        sync.Mutex
	nextID    uint64
	pending   map[uint64]func(float64)
	order     []uint64
	requested int
	cancelled int
	failWith  error
}

// NewFrames creates an empty frame source.
func NewFrames() *Frames {
	return &Frames{pending: map[uint64]func(float64){}}
}

// FailWith makes every subsequent Request call return err.
func (f *Frames) FailWith(err error) {
	f.mu.Lock()
	f.failWith = err
	f.mu.Unlock()
}

// Request implements api.FrameSource.
func (f *Frames) Request(fn func(ts float64)) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.nextID++
	f.requested++
	f.pending[f.nextID] = fn
	f.order = append(f.order, f.nextID)
	return f.nextID, nil
}

// Cancel implements api.FrameSource.
func (f *Frames) Cancel(id uint64) {
	f.mu.Lock()
	if _, ok := f.pending[id]; ok {
		delete(f.pending, id)
		f.cancelled++
	}
	f.mu.Unlock()
}

// Fire runs all callbacks requested before this frame, in request
// order, with timestamp ts. Callbacks requesting the next frame are
// deferred to the following Fire.
func (f *Frames) Fire(ts float64) int {
	f.mu.Lock()
	var fns []func(float64)
	for _, id := range f.order {
		if fn, ok := f.pending[id]; ok {
			fns = append(fns, fn)
			delete(f.pending, id)
		}
	}
	f.order = nil
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ts)
	}
	return len(fns)
}

// Pending reports the number of callbacks waiting for the next frame.
func (f *Frames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// RequestCalls reports how many Request calls succeeded.
func (f *Frames) RequestCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requested
}

// CancelCalls reports how many Cancel calls removed a live request.
func (f *Frames) CancelCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}
