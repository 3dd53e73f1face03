// Package timers
// Author: momentics <momentics@gmail.com>
//
// Scheduling adapters over the host one-shot timer capability.
//
// Timeout and Interval are callback handles: stopping the handle
// suppresses any further fire, Forget detaches it. TimeoutFuture and
// IntervalStream expose the same behavior through the poll-mode future
// and stream contracts. The repeating variants are layered on the
// one-shot primitive: every fire re-schedules the next occurrence and
// stores the fresh native id strictly before running the user callback,
// so cancellation from inside a callback always targets the live id.
package timers
