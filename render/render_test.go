// File: render/render_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package render_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hostbridge/api"
	"github.com/momentics/hostbridge/fake"
	"github.com/momentics/hostbridge/render"
)

func TestFrame_FiresWithTimestamp(t *testing.T) {
	frames := fake.NewFrames()
	var got float64
	_, err := render.NewFrame(frames, func(ts float64) { got = ts })
	require.NoError(t, err)

	frames.Fire(16.6)
	assert.Equal(t, 16.6, got)

	// One-shot: a second frame does not re-run the callback.
	n := frames.Fire(33.2)
	assert.Equal(t, 0, n)
}

func TestFrame_StopCancelsAtHost(t *testing.T) {
	frames := fake.NewFrames()
	fired := false
	f, err := render.NewFrame(frames, func(float64) { fired = true })
	require.NoError(t, err)

	f.Stop()
	frames.Fire(16.6)

	assert.False(t, fired)
	assert.Equal(t, 1, frames.CancelCalls())
}

func TestFrame_RequestRefusalSurfaces(t *testing.T) {
	frames := fake.NewFrames()
	frames.FailWith(errors.New("document hidden"))
	_, err := render.NewFrame(frames, func(float64) {})
	require.ErrorIs(t, err, api.ErrScheduleFailed)
}

func TestFrameLoop_RequestsNextBeforeInvoke(t *testing.T) {
	frames := fake.NewFrames()
	pendingDuringFire := -1
	loop, err := render.NewFrameLoop(frames, func(float64) {
		pendingDuringFire = frames.Pending()
	})
	require.NoError(t, err)
	defer loop.Stop()

	frames.Fire(1.0)
	assert.Equal(t, 1, pendingDuringFire)
	assert.Equal(t, 2, frames.RequestCalls())
}

func TestFrameLoop_StopFromInsideCallback(t *testing.T) {
	frames := fake.NewFrames()
	fired := 0
	var loop *render.FrameLoop
	loop, err := render.NewFrameLoop(frames, func(float64) {
		fired++
		loop.Stop()
	})
	require.NoError(t, err)

	frames.Fire(1.0)
	frames.Fire(2.0)

	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, frames.Pending())
}

func TestFrameStream_CoalescesToLatest(t *testing.T) {
	frames := fake.NewFrames()
	s, err := render.NewFrameStream(frames)
	require.NoError(t, err)
	defer s.Close()

	wakes := 0
	_, state := s.Next(func() { wakes++ })
	require.Equal(t, api.Pending, state)

	// Two frames before the consumer polls again: only the latest
	// timestamp survives.
	frames.Fire(1.0)
	frames.Fire(2.0)
	assert.Equal(t, 2, wakes)

	res, state := s.Next(func() {})
	require.Equal(t, api.Item, state)
	assert.Equal(t, 2.0, res.Value)

	_, state = s.Next(func() {})
	assert.Equal(t, api.Pending, state)
}

func TestFrameStream_CloseCancelsAndEnds(t *testing.T) {
	frames := fake.NewFrames()
	s, err := render.NewFrameStream(frames)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.Equal(t, 0, frames.Pending())

	_, state := s.Next(func() {})
	assert.Equal(t, api.End, state)
}
