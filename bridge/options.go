// File: bridge/options.go
// Package bridge defines functional options shared by bridge constructors.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge

import (
	"context"
	"log/slog"

	"github.com/momentics/hostbridge/api"
	"github.com/momentics/hostbridge/control"
)

type config struct {
	logHandler   slog.Handler
	metrics      *control.MetricsRegistry
	bubbleErrors bool

	successKind string
	errorKind   string
	itemKind    string
	closeKind   string

	ownSource bool
}

func defaultConfig() config {
	return config{
		logHandler:   noopLogHandler{},
		bubbleErrors: true,
		successKind:  api.KindSuccess,
		errorKind:    api.KindError,
		itemKind:     api.KindMessage,
		closeKind:    api.KindClose,
	}
}

// Option customizes bridge construction.
type Option func(*config)

// WithLogHandler attaches a slog handler for lifecycle diagnostics.
func WithLogHandler(h slog.Handler) Option {
	return func(c *config) {
		if h != nil {
			c.logHandler = h
		}
	}
}

// WithMetrics feeds bridge counters into reg.
func WithMetrics(reg *control.MetricsRegistry) Option {
	return func(c *config) {
		c.metrics = reg
	}
}

// BubbleErrors controls whether a host error event is allowed to run its
// default propagation. With false, the bridge calls the target's
// SuppressErrorDefault before surfacing the error to the consumer.
func BubbleErrors(bubble bool) Option {
	return func(c *config) {
		c.bubbleErrors = bubble
	}
}

// WithCompletionKinds remaps the success and error event kinds observed
// on a Completion target.
func WithCompletionKinds(success, errKind string) Option {
	return func(c *config) {
		c.successKind = success
		c.errorKind = errKind
	}
}

// WithStreamKinds remaps the item, close and error event kinds observed
// on a Repeating or Mux source.
func WithStreamKinds(item, closeKind, errKind string) Option {
	return func(c *config) {
		c.itemKind = item
		c.closeKind = closeKind
		c.errorKind = errKind
	}
}

// OwnSource marks the bridge as owner of its source connection: teardown
// additionally closes the source when it implements api.Closable. For a
// Mux this happens when the last subscription goes away.
func OwnSource() Option {
	return func(c *config) {
		c.ownSource = true
	}
}

type noopLogHandler struct{}

func (noopLogHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (noopLogHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h noopLogHandler) WithAttrs(_ []slog.Attr) slog.Handler        { return h }
func (h noopLogHandler) WithGroup(_ string) slog.Handler             { return h }
