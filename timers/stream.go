// File: timers/stream.go
// Package timers implements the stream-shaped interval.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timers

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hostbridge/api"
)

// IntervalStream yields a monotonically increasing sequence number for
// every interval fire. Fires that occur while the consumer lags are
// buffered, never dropped. The stream has no natural terminal state;
// Close stops the interval and makes subsequent Next calls report End.
type IntervalStream struct {
	mu     sync.Mutex
	iv     *Interval
	buf    *queue.Queue
	seq    uint64
	wake   api.Waker
	closed bool
}

// NewIntervalStream schedules the underlying interval.
func NewIntervalStream(host api.Schedulable, period time.Duration) (*IntervalStream, error) {
	s := &IntervalStream{buf: queue.New()}
	iv, err := NewInterval(host, period, s.onFire)
	if err != nil {
		return nil, err
	}
	s.iv = iv
	return s, nil
}

func (s *IntervalStream) onFire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	s.buf.Add(s.seq)
	wake := s.wake
	s.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Next implements api.Stream.
func (s *IntervalStream) Next(wake api.Waker) (api.Result[uint64], api.NextState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero api.Result[uint64]
	if s.buf.Length() > 0 {
		seq := s.buf.Remove().(uint64)
		return api.Result[uint64]{Value: seq}, api.Item
	}
	if s.closed {
		return zero, api.End
	}
	s.wake = wake
	return zero, api.Pending
}

// Close implements api.Stream and stops the interval. Idempotent.
func (s *IntervalStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.wake = nil
	s.mu.Unlock()
	s.iv.Stop()
	return nil
}
