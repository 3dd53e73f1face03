// File: api/capabilities.go
// Package api defines host capability contracts.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "time"

// Schedulable is the host timer capability: fire a callback once after a
// delay. Repeating behavior is layered on top of this one-shot primitive.
type Schedulable interface {
	// Schedule registers fn to run once after at least delay elapses.
	// The returned id is valid for Cancel until the callback has run.
	Schedule(delay time.Duration, fn func()) (id uint64, err error)

	// Cancel revokes a pending callback. Cancelling an id that already
	// fired or was cancelled is a no-op.
	Cancel(id uint64)
}

// FrameSource is the host animation-frame capability. Unlike Schedulable
// the host decides when the next frame occurs; callbacks receive the
// frame timestamp.
type FrameSource interface {
	Request(fn func(ts float64)) (id uint64, err error)
	Cancel(id uint64)
}

// Registration identifies one listener attached to an EventTarget.
type Registration struct {
	Kind string
	ID   uint64
}

// EventTarget is the host listener capability. Every bridge observes its
// target exclusively through this interface.
type EventTarget interface {
	// AddListener attaches fn for events of the given kind.
	AddListener(kind string, fn func(Event)) (Registration, error)

	// RemoveListener detaches a previously added listener. Removing a
	// registration twice is a no-op.
	RemoveListener(reg Registration)
}

// Requestable is an opaque one-shot host operation. Result and Err are
// valid only once IsPending reports false; exactly one of them will
// report ok after that point.
type Requestable interface {
	IsPending() bool
	Result() (value any, ok bool)
	Err() (err error, ok bool)
}

// Abortable is implemented by host operations that support upstream
// cancellation of in-flight work.
type Abortable interface {
	Abort() error
}

// Suppressible is implemented by host operations whose error events
// propagate a default action (e.g. aborting an owning transaction) that
// can be suppressed.
type Suppressible interface {
	SuppressErrorDefault()
}

// Closable is implemented by host sources whose connection can be shut
// down, e.g. when the last subscriber of a shared source goes away.
type Closable interface {
	Close() error
}
