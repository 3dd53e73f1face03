// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for bridge-level monitoring.
// Exposes counters in a thread-safe map with dynamic registration.

package control

import (
	"sync"
	"time"
)

// Well-known counter keys fed by the bridge, timers and render packages.
const (
	MetricListenersActive = "listeners.active"
	MetricResolved        = "bridge.resolved"
	MetricTeardown        = "bridge.teardown"
	MetricBuffered        = "stream.buffered"
	MetricFires           = "sched.fires"
	MetricCancels         = "sched.cancels"
)

// MetricsRegistry holds mutable counters and debug probes.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	probes   map[string]func() any
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]int64),
		probes:   make(map[string]func() any),
	}
}

// Add adjusts a counter by delta, creating it on first use.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	if mr == nil {
		return
	}
	mr.mu.Lock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns the current value of one counter.
func (mr *MetricsRegistry) Get(key string) int64 {
	if mr == nil {
		return 0
	}
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// GetSnapshot returns a copy of all counters.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	if mr == nil {
		return nil
	}
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters))
	for k, v := range mr.counters {
		out[k] = v
	}
	return out
}

// RegisterDebugProbe registers a named probe returning ad-hoc state.
func (mr *MetricsRegistry) RegisterDebugProbe(name string, fn func() any) {
	if mr == nil {
		return
	}
	mr.mu.Lock()
	mr.probes[name] = fn
	mr.mu.Unlock()
}

// Probe runs a registered probe; ok is false for unknown names.
func (mr *MetricsRegistry) Probe(name string) (any, bool) {
	if mr == nil {
		return nil, false
	}
	mr.mu.RLock()
	fn, ok := mr.probes[name]
	mr.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fn(), true
}
