// File: bridge/repeating.go
// Package bridge implements the repeating (stream) bridge.
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

// Repeating adapts a source that emits a sequence of discrete
// occurrences into an api.Stream.
//
// Occurrences arriving while nobody polls are queued, never dropped, so
// a slow consumer still observes every occurrence in arrival order.
// After the terminal close or error the stream drains its buffer, hands
// out the terminal signal exactly once, and reports End forever; it is
// not restartable.
type Repeating[T any] struct {
	mu     sync.Mutex
	events api.EventTarget
	decode func(any) (T, error)
	cfg    config
	log    *slog.Logger

	wake       api.Waker
	subscribed bool
	regs       []api.Registration

	buf       *queue.Queue
	terminal  bool
	termErr   error
	closeInfo api.CloseInfo
	haveClose bool
	endSent   bool
	closed    bool
}

// NewRepeating wraps an event-emitting source. decode converts each raw
// occurrence payload; nil decode type-asserts to T.
func NewRepeating[T any](events api.EventTarget, decode func(any) (T, error), opts ...Option) *Repeating[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if decode == nil {
		decode = assertPayload[T]
	}
	return &Repeating[T]{
		events: events,
		decode: decode,
		cfg:    cfg,
		log:    slog.New(cfg.logHandler),
		buf:    queue.New(),
	}
}

// Next implements api.Stream. Buffered items are always drained before
// the terminal signal so no occurrence observed by the listeners is
// lost, even when close arrived while the consumer lagged.
func (r *Repeating[T]) Next(wake api.Waker) (api.Result[T], api.NextState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero api.Result[T]
	if r.closed {
		return zero, api.Pending
	}

	r.wake = wake

	if r.buf.Length() > 0 {
		raw := r.buf.Remove()
		r.cfg.metrics.Add(control.MetricBuffered, -1)
		value, err := r.decode(raw)
		if err != nil {
			return api.Result[T]{Err: err}, api.Item
		}
		return api.Result[T]{Value: value}, api.Item
	}

	if r.terminal {
		if r.endSent {
			return zero, api.End
		}
		r.endSent = true
		r.unsubscribeLocked()
		return api.Result[T]{Err: r.termErr}, api.End
	}

	if !r.subscribed {
		if err := r.subscribeLocked(); err != nil {
			r.terminal = true
			r.endSent = true
			return api.Result[T]{Err: err}, api.End
		}
	}
	return zero, api.Pending
}

// CloseInfo reports the terminal close attributes. ok is false until a
// close event has been observed.
func (r *Repeating[T]) CloseInfo() (api.CloseInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeInfo, r.haveClose
}

func (r *Repeating[T]) subscribeLocked() error {
	onItem := func(ev api.Event) {
		r.mu.Lock()
		if r.terminal || r.closed {
			r.mu.Unlock()
			return
		}
		r.buf.Add(ev.Data)
		r.cfg.metrics.Add(control.MetricBuffered, 1)
		wake := r.wake
		r.mu.Unlock()
		if wake != nil {
			wake()
		}
	}
	onClose := func(ev api.Event) {
		r.mu.Lock()
		if r.terminal || r.closed {
			r.mu.Unlock()
			return
		}
		r.terminal = true
		if ci, ok := ev.Data.(api.CloseInfo); ok {
			r.closeInfo = ci
			r.haveClose = true
		}
		wake := r.wake
		r.mu.Unlock()
		if wake != nil {
			wake()
		}
	}
	onError := func(ev api.Event) {
		r.mu.Lock()
		if r.terminal || r.closed {
			r.mu.Unlock()
			return
		}
		r.terminal = true
		r.termErr = asError(ev.Data)
		wake := r.wake
		r.mu.Unlock()
		if wake != nil {
			wake()
		}
	}

	kinds := []struct {
		kind string
		fn   func(api.Event)
	}{
		{r.cfg.itemKind, onItem},
		{r.cfg.closeKind, onClose},
		{r.cfg.errorKind, onError},
	}
	for _, k := range kinds {
		reg, err := r.events.AddListener(k.kind, k.fn)
		if err != nil {
			r.unsubscribeLocked()
			return fmt.Errorf("hostbridge: add %s listener: %w", k.kind, err)
		}
		r.regs = append(r.regs, reg)
		r.cfg.metrics.Add(control.MetricListenersActive, 1)
	}
	r.subscribed = true
	r.log.Debug("stream subscribed", slogfield.Kind(r.cfg.itemKind))
	return nil
}

func (r *Repeating[T]) unsubscribeLocked() {
	for _, reg := range r.regs {
		r.events.RemoveListener(reg)
		r.cfg.metrics.Add(control.MetricListenersActive, -1)
	}
	r.regs = nil
	r.subscribed = false
}

// Close implements api.Stream: deregister listeners and, when the bridge
// owns its source, shut the source connection down. Idempotent.
func (r *Repeating[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.wake = nil
	r.unsubscribeLocked()
	r.cfg.metrics.Add(control.MetricTeardown, 1)
	r.log.Debug("stream closed", slogfield.Buffered(r.buf.Length()))
	if r.cfg.ownSource {
		if c, ok := r.events.(api.Closable); ok {
			return c.Close()
		}
	}
	return nil
}

func asError(data any) error {
	switch v := data.(type) {
	case nil:
		return api.NewError(api.ErrCodeTransport, "source error")
	case error:
		return v
	default:
		return api.NewError(api.ErrCodeTransport, fmt.Sprintf("source error: %v", v))
	}
}
