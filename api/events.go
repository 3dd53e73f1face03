// File: api/events.go
// Package api defines core event types for hostbridge.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "fmt"

// Default event kinds used by the bridge package. Targets with different
// vocabularies remap them via options.
const (
	KindSuccess = "success"
	KindError   = "error"
	KindMessage = "message"
	KindClose   = "close"
)

// Event is one occurrence observed on an EventTarget.
type Event struct {
	Kind string // discriminator tag, e.g. "message" or an SSE event type
	Data any    // payload; owned by the receiver after delivery
}

// CloseInfo describes why a source terminated. Immutable once built.
type CloseInfo struct {
	Clean  bool
	Code   uint16
	Reason string
}

func (ci CloseInfo) String() string {
	return fmt.Sprintf("close code=%d clean=%t reason=%q", ci.Code, ci.Clean, ci.Reason)
}
