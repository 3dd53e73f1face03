// Package api
// Author: momentics <momentics@gmail.com>
//
// Contract layer for hostbridge: capability interfaces consumed from the
// host environment (schedulers, event targets, request handles) and the
// poll-mode future/stream contracts exposed to consumers.
//
// All host primitives are injected; this package never touches the OS or
// the network. Concrete bridging lives in the bridge, timers and render
// packages.
package api
