// File: bridge/mux.go
// Package bridge implements tag-multiplexed subscriptions over one source.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hostbridge/api"
	"github.com/momentics/hostbridge/control"
	"github.com/momentics/hostbridge/internal/slogfield"
)

// Mux fans one shared event source out to independent per-tag
// subscriptions. Each occurrence carries a discriminator tag (its event
// kind); a subscription only observes occurrences matching its tag, in
// arrival order, regardless of how fast other subscribers consume.
//
// Close and error events are broadcast to every live subscription.
// Subscribing or unsubscribing from inside a delivered callback is safe:
// fan-out iterates over a snapshot taken under the lock and wakes
// subscribers outside of it.
type Mux struct {
	mu     sync.Mutex
	events api.EventTarget
	cfg    config
	log    *slog.Logger

	subs     map[string]*Subscription
	baseSubd bool
	baseRegs []api.Registration

	terminal  bool
	termErr   error
	closeInfo api.CloseInfo
	haveClose bool
	closed    bool
	srcClosed bool
}

// NewMux wraps a shared source. The mux owns the close and error
// listeners; per-tag listeners come and go with subscriptions.
func NewMux(events api.EventTarget, opts ...Option) *Mux {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Mux{
		events: events,
		cfg:    cfg,
		log:    slog.New(cfg.logHandler),
		subs:   map[string]*Subscription{},
	}
}

// Subscribe attaches a subscription for one discriminator tag. A second
// subscription on a live tag is rejected with api.ErrAlreadyExists; the
// tag frees up once the previous subscription is closed.
func (m *Mux) Subscribe(tag string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, api.ErrSourceClosed
	}
	if _, ok := m.subs[tag]; ok {
		return nil, fmt.Errorf("subscribe %q: %w", tag, api.ErrAlreadyExists)
	}
	if !m.baseSubd {
		if err := m.subscribeBaseLocked(); err != nil {
			return nil, err
		}
	}

	sub := &Subscription{mux: m, tag: tag, buf: queue.New()}
	if m.terminal {
		// Late subscriber on a terminated source: observes the terminal
		// signal immediately, never any items.
		sub.terminal = true
		sub.termErr = m.termErr
		m.log.Debug("mux subscribe", slogfield.Tag(tag), slogfield.State("terminal"))
	} else {
		reg, err := m.events.AddListener(tag, func(ev api.Event) {
			m.deliver(tag, ev)
		})
		if err != nil {
			return nil, fmt.Errorf("hostbridge: add %s listener: %w", tag, err)
		}
		sub.reg = reg
		sub.haveReg = true
		m.cfg.metrics.Add(control.MetricListenersActive, 1)
		m.log.Debug("mux subscribe", slogfield.Tag(tag), slogfield.ID(reg.ID))
	}
	m.subs[tag] = sub
	return sub, nil
}

func (m *Mux) subscribeBaseLocked() error {
	closeReg, err := m.events.AddListener(m.cfg.closeKind, m.onClose)
	if err != nil {
		return fmt.Errorf("hostbridge: add %s listener: %w", m.cfg.closeKind, err)
	}
	errReg, err := m.events.AddListener(m.cfg.errorKind, m.onError)
	if err != nil {
		m.events.RemoveListener(closeReg)
		return fmt.Errorf("hostbridge: add %s listener: %w", m.cfg.errorKind, err)
	}
	m.baseRegs = []api.Registration{closeReg, errReg}
	m.baseSubd = true
	m.cfg.metrics.Add(control.MetricListenersActive, 2)
	return nil
}

// deliver routes one tagged occurrence to its subscription.
func (m *Mux) deliver(tag string, ev api.Event) {
	m.mu.Lock()
	if m.terminal || m.closed {
		m.mu.Unlock()
		return
	}
	sub, ok := m.subs[tag]
	if !ok {
		m.mu.Unlock()
		return
	}
	queued, wake := sub.push(ev.Data)
	if queued {
		m.cfg.metrics.Add(control.MetricBuffered, 1)
	}
	m.mu.Unlock()
	if wake != nil {
		wake()
	}
}

func (m *Mux) onClose(ev api.Event) {
	m.mu.Lock()
	if m.terminal || m.closed {
		m.mu.Unlock()
		return
	}
	m.terminal = true
	if ci, ok := ev.Data.(api.CloseInfo); ok {
		m.closeInfo = ci
		m.haveClose = true
	}
	wakes := m.broadcastTerminalLocked(nil)
	m.mu.Unlock()
	for _, wake := range wakes {
		wake()
	}
}

func (m *Mux) onError(ev api.Event) {
	m.mu.Lock()
	if m.terminal || m.closed {
		m.mu.Unlock()
		return
	}
	m.terminal = true
	m.termErr = asError(ev.Data)
	wakes := m.broadcastTerminalLocked(m.termErr)
	m.mu.Unlock()
	for _, wake := range wakes {
		wake()
	}
}

// broadcastTerminalLocked marks every live subscription terminal and
// collects their wakers. The snapshot keeps reentrant (un)subscription
// from callbacks safe: wakers run after the lock is released.
func (m *Mux) broadcastTerminalLocked(err error) []api.Waker {
	wakes := make([]api.Waker, 0, len(m.subs))
	for _, sub := range m.subs {
		if wake := sub.markTerminal(err); wake != nil {
			wakes = append(wakes, wake)
		}
	}
	return wakes
}

// CloseInfo reports the terminal close attributes of the shared source.
func (m *Mux) CloseInfo() (api.CloseInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeInfo, m.haveClose
}

// remove detaches one subscription; the last one out closes the source
// when the mux owns it.
func (m *Mux) remove(sub *Subscription) {
	m.mu.Lock()
	cur, ok := m.subs[sub.tag]
	if !ok || cur != sub {
		m.mu.Unlock()
		return
	}
	delete(m.subs, sub.tag)
	if sub.haveReg {
		m.events.RemoveListener(sub.reg)
		sub.haveReg = false
		m.cfg.metrics.Add(control.MetricListenersActive, -1)
	}
	last := len(m.subs) == 0
	m.log.Debug("mux unsubscribe", slogfield.Tag(sub.tag))
	m.mu.Unlock()
	if last && m.cfg.ownSource {
		m.closeSource()
	}
}

// Close tears the whole mux down: every subscription, the base
// listeners, and the source when owned. Idempotent.
func (m *Mux) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	subs := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}
	m.mu.Lock()
	if m.baseSubd {
		for _, reg := range m.baseRegs {
			m.events.RemoveListener(reg)
			m.cfg.metrics.Add(control.MetricListenersActive, -1)
		}
		m.baseRegs = nil
		m.baseSubd = false
	}
	m.cfg.metrics.Add(control.MetricTeardown, 1)
	m.mu.Unlock()
	if m.cfg.ownSource {
		m.closeSource()
	}
	return nil
}

// closeSource shuts the owned source down at most once. api.Closable
// does not promise idempotence, and both the last-unsubscribe path and
// Close can reach here.
func (m *Mux) closeSource() {
	m.mu.Lock()
	if m.srcClosed {
		m.mu.Unlock()
		return
	}
	m.srcClosed = true
	m.mu.Unlock()
	if c, ok := m.events.(api.Closable); ok {
		if err := c.Close(); err != nil {
			m.log.Debug("source close failed", slogfield.Error(err))
		}
	}
}

// Subscription is one tag's view of a Mux: an api.Stream of raw
// occurrence payloads for that tag.
type Subscription struct {
	mux *Mux
	tag string

	reg     api.Registration
	haveReg bool

	// guarded by mux.mu
	buf      *queue.Queue
	terminal bool
	termErr  error
	endSent  bool
	closed   bool
	wake     api.Waker
}

// Tag reports the discriminator this subscription observes.
func (s *Subscription) Tag() string { return s.tag }

// push appends one payload and returns the waker to run, if any.
// Caller holds mux.mu.
func (s *Subscription) push(data any) (bool, api.Waker) {
	if s.closed || s.terminal {
		return false, nil
	}
	s.buf.Add(data)
	return true, s.wake
}

// markTerminal flags the subscription finished and returns its waker.
// Caller holds mux.mu.
func (s *Subscription) markTerminal(err error) api.Waker {
	if s.closed || s.terminal {
		return nil
	}
	s.terminal = true
	s.termErr = err
	return s.wake
}

// Next implements api.Stream.
func (s *Subscription) Next(wake api.Waker) (api.Result[any], api.NextState) {
	s.mux.mu.Lock()
	defer s.mux.mu.Unlock()

	var zero api.Result[any]
	if s.closed {
		return zero, api.Pending
	}
	s.wake = wake

	if s.buf.Length() > 0 {
		raw := s.buf.Remove()
		s.mux.cfg.metrics.Add(control.MetricBuffered, -1)
		return api.Result[any]{Value: raw}, api.Item
	}
	if s.terminal {
		if s.endSent {
			return zero, api.End
		}
		s.endSent = true
		return api.Result[any]{Err: s.termErr}, api.End
	}
	return zero, api.Pending
}

// Close implements api.Stream and detaches the subscription from its
// mux. Idempotent.
func (s *Subscription) Close() error {
	s.mux.mu.Lock()
	if s.closed {
		s.mux.mu.Unlock()
		return nil
	}
	s.closed = true
	s.wake = nil
	s.mux.mu.Unlock()
	s.mux.remove(s)
	return nil
}
