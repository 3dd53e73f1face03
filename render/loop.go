// File: render/loop.go
// Package render implements the repeating animation-frame loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package render

import (
	"fmt"
	"sync"

	"github.com/momentics/hostbridge/api"
)

// FrameLoop runs fn on every animation frame. Like timers.Interval, the
// next frame is requested and its fresh native id stored strictly
// before fn runs, so a Stop from inside fn cancels the live request.
type FrameLoop struct {
	mu      sync.Mutex
	src     api.FrameSource
	fn      func(ts float64)
	id      uint64
	stopped bool
	lastErr error
}

// NewFrameLoop requests the first frame.
func NewFrameLoop(src api.FrameSource, fn func(ts float64)) (*FrameLoop, error) {
	l := &FrameLoop{src: src, fn: fn}
	if err := l.arm(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FrameLoop) arm() error {
	id, err := l.src.Request(l.fire)
	if err != nil {
		return fmt.Errorf("render: %w: %v", api.ErrScheduleFailed, err)
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		l.src.Cancel(id)
		return nil
	}
	l.id = id
	l.mu.Unlock()
	return nil
}

func (l *FrameLoop) fire(ts float64) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	if err := l.arm(); err != nil {
		l.mu.Lock()
		l.stopped = true
		l.lastErr = err
		l.mu.Unlock()
	}
	l.fn(ts)
}

// Stop suppresses all further frames. Idempotent.
func (l *FrameLoop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	id := l.id
	l.mu.Unlock()
	l.src.Cancel(id)
}

// Err reports the request failure that stopped the loop, if any.
func (l *FrameLoop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}
