// File: bridge/repeating_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hostbridge/api"
	"github.com/momentics/hostbridge/bridge"
	"github.com/momentics/hostbridge/fake"
)

func TestRepeating_OrderingPreserved(t *testing.T) {
	target := fake.NewTarget()
	r := bridge.NewRepeating[int](target, nil)

	// First Next subscribes item, close and error listeners.
	_, state := r.Next(noWake)
	require.Equal(t, api.Pending, state)
	assert.Equal(t, 3, target.Added())

	target.Dispatch(api.KindMessage, 1)
	target.Dispatch(api.KindMessage, 2)
	target.Dispatch(api.KindMessage, 3)

	for want := 1; want <= 3; want++ {
		res, state := r.Next(noWake)
		require.Equal(t, api.Item, state)
		require.NoError(t, res.Err)
		assert.Equal(t, want, res.Value)
	}
	_, state = r.Next(noWake)
	assert.Equal(t, api.Pending, state)
}

func TestRepeating_CleanCloseScenario(t *testing.T) {
	target := fake.NewTarget()
	r := bridge.NewRepeating[int](target, nil)

	_, _ = r.Next(noWake)
	for _, v := range []int{1, 2, 3} {
		target.Dispatch(api.KindMessage, v)
	}
	target.Dispatch(api.KindClose, api.CloseInfo{Clean: true, Code: 1000, Reason: ""})

	// Buffered items drain before the terminal signal.
	for want := 1; want <= 3; want++ {
		res, state := r.Next(noWake)
		require.Equal(t, api.Item, state)
		assert.Equal(t, want, res.Value)
	}

	res, state := r.Next(noWake)
	require.Equal(t, api.End, state)
	require.NoError(t, res.Err)

	ci, ok := r.CloseInfo()
	require.True(t, ok)
	assert.Equal(t, api.CloseInfo{Clean: true, Code: 1000, Reason: ""}, ci)

	// Finite and not restartable.
	for i := 0; i < 3; i++ {
		_, state := r.Next(noWake)
		assert.Equal(t, api.End, state)
	}
	// Listeners were dropped with the terminal signal; later dispatches
	// are not observed.
	target.Dispatch(api.KindMessage, 4)
	_, state = r.Next(noWake)
	assert.Equal(t, api.End, state)
	assert.Equal(t, 0, target.Active(""))
}

func TestRepeating_ErrorTerminal(t *testing.T) {
	target := fake.NewTarget()
	r := bridge.NewRepeating[string](target, nil)

	_, _ = r.Next(noWake)
	target.Dispatch(api.KindError, errors.New("connection reset"))

	res, state := r.Next(noWake)
	require.Equal(t, api.End, state)
	require.EqualError(t, res.Err, "connection reset")

	// The terminal signal is handed out exactly once.
	res, state = r.Next(noWake)
	assert.Equal(t, api.End, state)
	assert.NoError(t, res.Err)
}

func TestRepeating_WakeOnItemAndClose(t *testing.T) {
	target := fake.NewTarget()
	r := bridge.NewRepeating[int](target, nil)

	var wakes atomic.Int32
	wake := func() { wakes.Add(1) }

	_, _ = r.Next(wake)
	target.Dispatch(api.KindMessage, 1)
	assert.Equal(t, int32(1), wakes.Load())
	target.Dispatch(api.KindClose, api.CloseInfo{Clean: true, Code: 1000})
	assert.Equal(t, int32(2), wakes.Load())
}

func TestRepeating_TeardownWhileLive(t *testing.T) {
	target := fake.NewTarget()
	r := bridge.NewRepeating[int](target, nil)

	var wakes atomic.Int32
	_, _ = r.Next(func() { wakes.Add(1) })
	require.Equal(t, 3, target.Active(""))

	require.NoError(t, r.Close())
	assert.Equal(t, 0, target.Active(""))

	target.Dispatch(api.KindMessage, 1)
	assert.Equal(t, int32(0), wakes.Load())
}

func TestRepeating_OwnSourceClosedOnTeardown(t *testing.T) {
	target := fake.NewTarget()
	r := bridge.NewRepeating[int](target, nil, bridge.OwnSource())

	_, _ = r.Next(noWake)
	require.NoError(t, r.Close())
	assert.True(t, target.Closed())
}

func TestRepeating_CustomKinds(t *testing.T) {
	target := fake.NewTarget()
	r := bridge.NewRepeating[string](target, nil,
		bridge.WithStreamKinds("frame", "closed", "failed"))

	_, _ = r.Next(noWake)
	target.Dispatch("frame", "f1")
	res, state := r.Next(noWake)
	require.Equal(t, api.Item, state)
	assert.Equal(t, "f1", res.Value)

	target.Dispatch("closed", api.CloseInfo{Clean: true, Code: 1001})
	_, state = r.Next(noWake)
	assert.Equal(t, api.End, state)
}
