// Package fake tests the virtual-time scheduler.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake_test

import (
	"testing"
	"time"

	"github.com/momentics/hostbridge/fake"
)

func TestScheduler_FiresInDueOrder(t *testing.T) {
	s := fake.NewScheduler()
	var order []int
	_, _ = s.Schedule(20*time.Millisecond, func() { order = append(order, 2) })
	_, _ = s.Schedule(10*time.Millisecond, func() { order = append(order, 1) })
	_, _ = s.Schedule(20*time.Millisecond, func() { order = append(order, 3) })

	s.Advance(20 * time.Millisecond)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("fire order wrong: %v", order)
	}
}

func TestScheduler_CancelSuppressesFire(t *testing.T) {
	s := fake.NewScheduler()
	fired := false
	id, _ := s.Schedule(0, func() { fired = true })
	s.Cancel(id)
	s.Flush()
	if fired {
		t.Error("cancelled timer fired")
	}
	if s.CancelCalls() != 1 {
		t.Errorf("cancel calls = %d", s.CancelCalls())
	}
}

func TestScheduler_DrainsWaves(t *testing.T) {
	s := fake.NewScheduler()
	fired := 0
	_, _ = s.Schedule(0, func() {
		fired++
		// Work scheduled while draining, already due, runs in the same
		// pump.
		_, _ = s.Schedule(0, func() { fired++ })
	})
	s.Flush()
	if fired != 2 {
		t.Errorf("expected 2 fires, got %d", fired)
	}
}
