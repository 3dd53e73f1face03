// Package render
// Author: momentics <momentics@gmail.com>
//
// Animation-frame adapters over the host api.FrameSource capability.
//
// Frame is a one-shot frame callback handle, FrameLoop a repeating loop
// with reschedule-before-invoke, and FrameStream a pull stream of frame
// timestamps with single-slot coalescing: consumers that poll slower
// than the frame rate observe only the latest frame, matching host
// animation-frame semantics.
package render
