// File: render/frame.go
// Package render implements the one-shot animation-frame handle.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package render

import (
	"fmt"
	"sync"

	"github.com/momentics/hostbridge/api"
)

type frameState int

const (
	frameScheduled frameState = iota
	frameFired
	frameStopped
	frameForgotten
)

// Frame requests one animation frame and runs fn with its timestamp.
// Stop cancels the request at the host; Forget detaches the callback.
type Frame struct {
	mu    sync.Mutex
	src   api.FrameSource
	id    uint64
	state frameState
}

// NewFrame requests the frame; a host refusal surfaces immediately.
func NewFrame(src api.FrameSource, fn func(ts float64)) (*Frame, error) {
	f := &Frame{src: src}
	id, err := src.Request(func(ts float64) {
		f.mu.Lock()
		if f.state == frameStopped {
			f.mu.Unlock()
			return
		}
		if f.state == frameScheduled {
			f.state = frameFired
		}
		f.mu.Unlock()
		fn(ts)
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w: %v", api.ErrScheduleFailed, err)
	}
	f.mu.Lock()
	f.id = id
	f.mu.Unlock()
	return f, nil
}

// Stop cancels the pending frame callback. No-op once fired.
func (f *Frame) Stop() {
	f.mu.Lock()
	if f.state != frameScheduled {
		f.mu.Unlock()
		return
	}
	f.state = frameStopped
	id := f.id
	f.mu.Unlock()
	f.src.Cancel(id)
}

// Forget detaches the callback so it fires even after the handle is
// discarded. Returns the native id for direct host cancellation.
func (f *Frame) Forget() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == frameScheduled {
		f.state = frameForgotten
	}
	return f.id
}
