// Package fake
// Author: momentics <momentics@gmail.com>
//
// Test doubles for the host capabilities consumed by hostbridge: a
// virtual-time scheduler, a recording event target, a one-shot request
// handle and an animation-frame source. They record every register,
// deregister and cancel call so teardown behavior can be asserted.
package fake
