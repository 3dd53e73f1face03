// File: fake/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sort"
	"sync"
	"time"
)

type timerEntry struct {
	id  uint64
	due time.Duration
	seq uint64
	fn  func()
}

// Scheduler is a virtual-time api.Schedulable. Callbacks never run
// spontaneously; the test pumps them with Advance or Flush, which mimics
// the host event queue draining.
type Scheduler struct {
	mu        sync.Mutex
	now       time.Duration
	nextID    uint64
	nextSeq   uint64
	pending   map[uint64]*timerEntry
	failWith  error
	scheduled int
	cancelled int
}

// NewScheduler creates a scheduler at virtual time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: map[uint64]*timerEntry{}}
}

// FailWith makes every subsequent Schedule call return err. Pass nil to
// restore normal behavior.
func (s *Scheduler) FailWith(err error) {
	s.mu.Lock()
	s.failWith = err
	s.mu.Unlock()
}

// Schedule implements api.Schedulable.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	s.nextID++
	s.nextSeq++
	s.scheduled++
	e := &timerEntry{id: s.nextID, due: s.now + delay, seq: s.nextSeq, fn: fn}
	s.pending[e.id] = e
	return e.id, nil
}

// Cancel implements api.Schedulable.
func (s *Scheduler) Cancel(id uint64) {
	s.mu.Lock()
	if _, ok := s.pending[id]; ok {
		delete(s.pending, id)
		s.cancelled++
	}
	s.mu.Unlock()
}

// Advance moves virtual time forward and runs every callback whose due
// time has been reached, in (due, schedule-order) order. Callbacks may
// schedule or cancel further timers; newly due work is drained in waves
// until none remains.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
	for {
		batch := s.takeDue()
		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			e.fn()
		}
	}
}

// Flush runs everything already due at the current virtual time.
func (s *Scheduler) Flush() {
	s.Advance(0)
}

func (s *Scheduler) takeDue() []*timerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*timerEntry
	for _, e := range s.pending {
		if e.due <= s.now {
			due = append(due, e)
		}
	}
	for _, e := range due {
		delete(s.pending, e.id)
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	return due
}

// Pending reports the number of timers not yet fired or cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ScheduleCalls reports how many Schedule calls succeeded.
func (s *Scheduler) ScheduleCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

// CancelCalls reports how many Cancel calls removed a live timer.
func (s *Scheduler) CancelCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Now reports the current virtual time.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
