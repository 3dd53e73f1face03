// File: bridge/completion.go
// Package bridge implements the one-shot completion bridge.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/momentics/hostbridge/api"
	"github.com/momentics/hostbridge/control"
	"github.com/momentics/hostbridge/internal/slogfield"
)

type completionState int

const (
	completionPending completionState = iota
	completionOK
	completionErr
)

// Completion adapts a one-shot host operation into an api.Future.
//
// Poll observes the target's readiness directly; while pending it
// attaches one success and one error listener (exactly once, regardless
// of how often it is re-polled) whose only job is to invoke the waker.
// The terminal payload is always read from the target, never from the
// event, so resolution observed between polls is not lost.
type Completion[T any] struct {
	mu     sync.Mutex
	target api.Requestable
	events api.EventTarget
	decode func(any) (T, error)
	cfg    config
	log    *slog.Logger

	wake       api.Waker
	subscribed bool
	successReg api.Registration
	errorReg   api.Registration

	state    completionState
	resolved api.Result[T]
	closed   bool
	detached bool
}

// NewCompletion wraps a pending host operation. The target carries
// readiness and payload; events carries its completion listeners. decode
// converts the raw success payload; nil decode type-asserts to T.
func NewCompletion[T any](target api.Requestable, events api.EventTarget, decode func(any) (T, error), opts ...Option) *Completion[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if decode == nil {
		decode = assertPayload[T]
	}
	return &Completion[T]{
		target: target,
		events: events,
		decode: decode,
		cfg:    cfg,
		log:    slog.New(cfg.logHandler),
	}
}

// Poll implements api.Future.
func (c *Completion[T]) Poll(wake api.Waker) (api.Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != completionPending {
		// Cached terminal value; no listeners are live at this point.
		return c.resolved, true
	}
	if c.closed {
		// A torn-down bridge never resolves.
		var zero api.Result[T]
		return zero, false
	}

	c.wake = wake

	if !c.target.IsPending() {
		c.resolveLocked()
		return c.resolved, true
	}

	if !c.subscribed {
		if err := c.subscribeLocked(); err != nil {
			c.state = completionErr
			c.resolved = api.Result[T]{Err: err}
			return c.resolved, true
		}
		// The host may have resolved between the readiness check above
		// and the listener registration; that completion event found no
		// listener, so no wake will ever arrive for it. Re-checking here
		// closes the window: the payload lives on the target, not in the
		// event.
		if !c.target.IsPending() {
			c.resolveLocked()
			return c.resolved, true
		}
	}
	var zero api.Result[T]
	return zero, false
}

// resolveLocked reads the terminal payload off the target and caches it.
// Called with the target known to be non-pending.
func (c *Completion[T]) resolveLocked() {
	if v, ok := c.target.Result(); ok {
		value, err := c.decode(v)
		if err != nil {
			c.state = completionErr
			c.resolved = api.Result[T]{Err: err}
		} else {
			c.state = completionOK
			c.resolved = api.Result[T]{Value: value}
		}
	} else if err, ok := c.target.Err(); ok {
		if !c.cfg.bubbleErrors {
			if s, ok := c.target.(api.Suppressible); ok {
				s.SuppressErrorDefault()
			}
		}
		c.state = completionErr
		c.resolved = api.Result[T]{Err: err}
	} else {
		// Neither pending nor a known terminal state: internal
		// consistency is gone and misreporting would be worse than
		// stopping here.
		panic("hostbridge: request target is neither pending nor terminal")
	}
	c.unsubscribeLocked()
	c.cfg.metrics.Add(control.MetricResolved, 1)
	c.log.Debug("completion resolved", slogfield.State(c.stateString()))
}

func (c *Completion[T]) subscribeLocked() error {
	onFire := func(api.Event) {
		c.mu.Lock()
		wake := c.wake
		c.mu.Unlock()
		if wake != nil {
			wake()
		}
	}
	successReg, err := c.events.AddListener(c.cfg.successKind, onFire)
	if err != nil {
		return fmt.Errorf("hostbridge: add %s listener: %w", c.cfg.successKind, err)
	}
	errorReg, err := c.events.AddListener(c.cfg.errorKind, onFire)
	if err != nil {
		c.events.RemoveListener(successReg)
		return fmt.Errorf("hostbridge: add %s listener: %w", c.cfg.errorKind, err)
	}
	c.successReg = successReg
	c.errorReg = errorReg
	c.subscribed = true
	c.cfg.metrics.Add(control.MetricListenersActive, 2)
	return nil
}

func (c *Completion[T]) unsubscribeLocked() {
	if !c.subscribed {
		return
	}
	c.events.RemoveListener(c.successReg)
	c.events.RemoveListener(c.errorReg)
	c.subscribed = false
	c.cfg.metrics.Add(control.MetricListenersActive, -2)
}

// Close implements api.Future. If the bridge is still pending its
// listeners are deregistered so the orphaned host event can no longer
// wake anything, and upstream cancellation is requested when the target
// supports it. Safe to call on every exit path; idempotent.
func (c *Completion[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.detached {
		return nil
	}
	c.closed = true
	c.wake = nil
	if c.state == completionPending {
		c.unsubscribeLocked()
		if a, ok := c.target.(api.Abortable); ok {
			if err := a.Abort(); err != nil {
				c.log.Debug("abort failed", slogfield.Error(err))
			}
		}
	}
	c.cfg.metrics.Add(control.MetricTeardown, 1)
	return nil
}

// Detach relinquishes teardown: listeners stay registered and the host
// operation keeps running after the handle is discarded.
func (c *Completion[T]) Detach() {
	c.mu.Lock()
	c.detached = true
	c.mu.Unlock()
}

func (c *Completion[T]) stateString() string {
	switch c.state {
	case completionOK:
		return "resolved-ok"
	case completionErr:
		return "resolved-err"
	default:
		return "pending"
	}
}

func assertPayload[T any](v any) (T, error) {
	value, ok := v.(T)
	if !ok {
		return value, api.NewError(api.ErrCodeDecode,
			fmt.Sprintf("unexpected payload type %T", v))
	}
	return value, nil
}
