// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Context and channel integration for the poll-mode contracts. Await
// and Drain drive a future or stream with a channel-backed waker until
// resolution; cancellation through the context tears the bridge down.
// Race composes a timeout from a future and a one-shot timer, tearing
// down whichever side loses.
package adapters
