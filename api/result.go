// Package api
// Author: momentics@gmail.com
//
// Generic result, wake and poll-mode contracts.

package api

// Result wraps any payload or error.
type Result[T any] struct {
	Value T
	Err   error
}

// Waker is supplied by the caller's scheduler on every poll. A bridge
// invokes the most recently supplied waker when its target fires, asking
// the scheduler to re-poll.
type Waker func()

// Future is the poll-mode contract for one-shot bridges. Poll reports
// (zero, false) while pending; once the terminal outcome is observed it
// reports (result, true) and keeps reporting the same cached result.
type Future[T any] interface {
	Poll(wake Waker) (Result[T], bool)

	// Close tears the bridge down: listeners are deregistered and, where
	// supported, upstream cancellation is requested. Idempotent.
	Close() error
}

// NextState classifies the outcome of one Next call on a Stream.
type NextState int

const (
	// Pending means no occurrence is buffered and the source has not
	// terminated; the waker fires when that changes.
	Pending NextState = iota

	// Item means one buffered occurrence was dequeued (FIFO order).
	Item

	// End means the source reached its terminal state. The terminal
	// signal is carried exactly once; later calls keep reporting End
	// with a zero Result.
	End
)

// Stream is the pull contract for repeating bridges.
type Stream[T any] interface {
	Next(wake Waker) (Result[T], NextState)
	Close() error
}
