// Package bridge
// Author: momentics <momentics@gmail.com>
//
// Completion bridging core of hostbridge.
//
// A bridge adapts one callback-driven host operation into a pollable
// value. Completion covers operations that resolve at most once;
// Repeating covers sources that emit a sequence of occurrences before an
// optional terminal close or error; Mux fans one shared source out to
// per-tag subscriptions.
//
// The contract is uniform across all three:
//   - listeners attach lazily on the first poll, exactly once
//   - every listener fire invokes the most recently supplied waker
//   - a terminal outcome is observed exactly once and then cached
//   - Close deregisters listeners on every exit path and requests
//     upstream cancellation where the target supports it
package bridge
