// File: adapters/await.go
// Package adapters drives poll-mode bridges from ordinary Go code.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package adapters

import (
	"context"
	"time"

	"github.com/momentics/hostbridge/api"
	"github.com/momentics/hostbridge/timers"
)

// Await polls f until it resolves, parking between polls until the
// bridge's waker fires. Context cancellation closes the bridge (its
// listeners are deregistered, upstream work aborted where supported)
// and returns ctx.Err().
func Await[T any](ctx context.Context, f api.Future[T]) (T, error) {
	wakeCh := make(chan struct{}, 1)
	wake := func() {
		select {
		case wakeCh <- struct{}{}:
		default:
		}
	}
	for {
		res, ready := f.Poll(wake)
		if ready {
			return res.Value, res.Err
		}
		select {
		case <-wakeCh:
		case <-ctx.Done():
			_ = f.Close()
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Drain consumes s until End, returning every item in arrival order.
// The first item-level or terminal error stops consumption and is
// returned alongside the items collected so far. Context cancellation
// closes the stream.
func Drain[T any](ctx context.Context, s api.Stream[T]) ([]T, error) {
	wakeCh := make(chan struct{}, 1)
	wake := func() {
		select {
		case wakeCh <- struct{}{}:
		default:
		}
	}
	var items []T
	for {
		res, state := s.Next(wake)
		switch state {
		case api.Item:
			if res.Err != nil {
				return items, res.Err
			}
			items = append(items, res.Value)
		case api.End:
			return items, res.Err
		case api.Pending:
			select {
			case <-wakeCh:
			case <-ctx.Done():
				_ = s.Close()
				return items, ctx.Err()
			}
		}
	}
}

// Race awaits f with a deadline composed from a one-shot timer on host.
// Whichever side resolves first wins; the loser is torn down. A timer
// win surfaces api.ErrOperationTimeout.
func Race[T any](ctx context.Context, f api.Future[T], host api.Schedulable, limit time.Duration) (T, error) {
	var zero T
	tf, err := timers.NewTimeoutFuture(host, limit)
	if err != nil {
		return zero, err
	}
	wakeCh := make(chan struct{}, 1)
	wake := func() {
		select {
		case wakeCh <- struct{}{}:
		default:
		}
	}
	for {
		if res, ready := f.Poll(wake); ready {
			_ = tf.Close()
			return res.Value, res.Err
		}
		if _, ready := tf.Poll(wake); ready {
			_ = f.Close()
			return zero, api.ErrOperationTimeout
		}
		select {
		case <-wakeCh:
		case <-ctx.Done():
			_ = f.Close()
			_ = tf.Close()
			return zero, ctx.Err()
		}
	}
}
