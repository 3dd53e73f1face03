// File: bridge/mux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hostbridge/api"
	"github.com/momentics/hostbridge/bridge"
	"github.com/momentics/hostbridge/fake"
)

func drainItems(t *testing.T, s *bridge.Subscription) []any {
	t.Helper()
	var out []any
	for {
		res, state := s.Next(noWake)
		if state != api.Item {
			return out
		}
		require.NoError(t, res.Err)
		out = append(out, res.Value)
	}
}

func TestMux_RoutesByTag(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target)

	alerts, err := m.Subscribe("alert")
	require.NoError(t, err)
	ticks, err := m.Subscribe("tick")
	require.NoError(t, err)

	target.Dispatch("tick", 1)
	target.Dispatch("alert", "red")
	target.Dispatch("tick", 2)
	target.Dispatch("other", "ignored")

	assert.Equal(t, []any{"red"}, drainItems(t, alerts))
	assert.Equal(t, []any{1, 2}, drainItems(t, ticks))
}

func TestMux_IndependentConsumptionRates(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target)

	fast, err := m.Subscribe("fast")
	require.NoError(t, err)
	slow, err := m.Subscribe("slow")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		target.Dispatch("fast", i)
		target.Dispatch("slow", i)
	}

	// Draining one subscription leaves the other's queue untouched.
	assert.Len(t, drainItems(t, fast), 4)
	assert.Equal(t, []any{0, 1, 2, 3}, drainItems(t, slow))
}

func TestMux_DuplicateTagRejected(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target)

	sub, err := m.Subscribe("tick")
	require.NoError(t, err)
	_, err = m.Subscribe("tick")
	require.ErrorIs(t, err, api.ErrAlreadyExists)

	// The tag frees up once the subscription is closed.
	require.NoError(t, sub.Close())
	_, err = m.Subscribe("tick")
	require.NoError(t, err)
}

func TestMux_CloseEventFansOut(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target)

	a, err := m.Subscribe("a")
	require.NoError(t, err)
	b, err := m.Subscribe("b")
	require.NoError(t, err)

	target.Dispatch("a", 1)
	target.Dispatch(api.KindClose, api.CloseInfo{Clean: true, Code: 1000})

	// Buffered items still drain before the terminal signal.
	res, state := a.Next(noWake)
	require.Equal(t, api.Item, state)
	assert.Equal(t, 1, res.Value)
	_, state = a.Next(noWake)
	assert.Equal(t, api.End, state)

	_, state = b.Next(noWake)
	assert.Equal(t, api.End, state)

	ci, ok := m.CloseInfo()
	require.True(t, ok)
	assert.Equal(t, uint16(1000), ci.Code)
	assert.True(t, ci.Clean)
}

func TestMux_ErrorEventFansOut(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target)

	a, err := m.Subscribe("a")
	require.NoError(t, err)

	target.Dispatch(api.KindError, errors.New("gone"))

	res, state := a.Next(noWake)
	require.Equal(t, api.End, state)
	require.EqualError(t, res.Err, "gone")
}

func TestMux_ReentrantSubscribeFromWaker(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target)

	a, err := m.Subscribe("a")
	require.NoError(t, err)
	b, err := m.Subscribe("b")
	require.NoError(t, err)

	// Wakers that mutate the subscription table while the terminal
	// fan-out is in flight must not corrupt delivery.
	var late *bridge.Subscription
	_, state := a.Next(func() {
		_ = b.Close()
		late, _ = m.Subscribe("late")
	})
	require.Equal(t, api.Pending, state)

	target.Dispatch(api.KindClose, api.CloseInfo{Clean: true, Code: 1000})

	_, state = a.Next(noWake)
	assert.Equal(t, api.End, state)
	require.NotNil(t, late)
	// The late subscriber observes the terminal state immediately.
	_, state = late.Next(noWake)
	assert.Equal(t, api.End, state)
}

func TestMux_LastUnsubscribeClosesOwnedSource(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target, bridge.OwnSource())

	a, err := m.Subscribe("a")
	require.NoError(t, err)
	b, err := m.Subscribe("b")
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.False(t, target.Closed())
	require.NoError(t, b.Close())
	assert.True(t, target.Closed())
}

func TestMux_CloseShutsOwnedSourceExactlyOnce(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target, bridge.OwnSource())

	_, err := m.Subscribe("a")
	require.NoError(t, err)

	// Closing the mux tears down the last subscription, which also
	// reaches the owned source; the source must still see one Close.
	require.NoError(t, m.Close())
	assert.Equal(t, 1, target.CloseCalls())

	require.NoError(t, m.Close())
	assert.Equal(t, 1, target.CloseCalls())
}

func TestMux_SubscriptionTeardownRemovesListener(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target)

	sub, err := m.Subscribe("tick")
	require.NoError(t, err)
	// tag listener + close + error
	require.Equal(t, 3, target.Active(""))

	require.NoError(t, sub.Close())
	assert.Equal(t, 2, target.Active(""))

	require.NoError(t, m.Close())
	assert.Equal(t, 0, target.Active(""))
}

func TestMux_SubscribeAfterCloseFails(t *testing.T) {
	target := fake.NewTarget()
	m := bridge.NewMux(target)
	require.NoError(t, m.Close())
	_, err := m.Subscribe("x")
	require.ErrorIs(t, err, api.ErrSourceClosed)
}
