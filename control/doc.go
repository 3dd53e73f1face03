// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection layer for hostbridge.
//
// Provides concurrent-safe state handling primitives including:
//   - Counter telemetry fed by bridges and scheduling adapters
//   - Snapshot reads of the current metric set
//   - Debug probe registration for ad-hoc state export
package control
