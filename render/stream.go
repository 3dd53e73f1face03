// File: render/stream.go
// Package render implements the coalescing frame timestamp stream.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package render

import (
	"sync"

	"github.com/momentics/hostbridge/api"
)

// FrameStream yields frame timestamps. Unlike the FIFO-buffered
// bridges, frames coalesce: only the latest unconsumed timestamp is
// retained, because a frame that was never painted on time carries no
// value once the next one arrived.
type FrameStream struct {
	mu     sync.Mutex
	loop   *FrameLoop
	slot   float64
	haveTS bool
	wake   api.Waker
	closed bool
}

// NewFrameStream starts the underlying frame loop.
func NewFrameStream(src api.FrameSource) (*FrameStream, error) {
	s := &FrameStream{}
	loop, err := NewFrameLoop(src, s.onFrame)
	if err != nil {
		return nil, err
	}
	s.loop = loop
	return s, nil
}

func (s *FrameStream) onFrame(ts float64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	// Single-slot coalescing: overwrite, never queue.
	s.slot = ts
	s.haveTS = true
	wake := s.wake
	s.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Next implements api.Stream.
func (s *FrameStream) Next(wake api.Waker) (api.Result[float64], api.NextState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero api.Result[float64]
	if s.haveTS {
		s.haveTS = false
		return api.Result[float64]{Value: s.slot}, api.Item
	}
	if s.closed {
		return zero, api.End
	}
	s.wake = wake
	return zero, api.Pending
}

// Close implements api.Stream and stops the frame loop. Idempotent.
func (s *FrameStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.wake = nil
	s.mu.Unlock()
	s.loop.Stop()
	return nil
}
