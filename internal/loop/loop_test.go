// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestManual_DeferRunsOnNextTickOnly(t *testing.T) {
	m := NewManual()
	ran := false
	m.Defer(func() { ran = true })
	require.False(t, ran, "deferred work must not run synchronously")
	require.Equal(t, 1, m.RunPending())
	require.True(t, ran)
}

func TestManual_CancelPreventsRun(t *testing.T) {
	m := NewManual()
	ran := false
	cancel := m.Defer(func() { ran = true })
	require.True(t, cancel())
	require.False(t, cancel(), "second cancel reports nothing pending")
	require.Equal(t, 0, m.RunPending())
	require.False(t, ran)
}

func TestManual_AdvanceFiresTimersInOrder(t *testing.T) {
	m := NewManual()
	var order []string
	m.After(200*time.Millisecond, func() { order = append(order, "b") })
	m.After(100*time.Millisecond, func() {
		order = append(order, "a")
		m.Defer(func() { order = append(order, "a-deferred") })
	})
	cancel := m.After(150*time.Millisecond, func() { order = append(order, "never") })
	cancel()

	m.Advance(99 * time.Millisecond)
	require.Empty(t, order)

	m.Advance(200 * time.Millisecond)
	require.Equal(t, []string{"a", "a-deferred", "b"}, order)
	require.Equal(t, 299*time.Millisecond, m.Now())
}

func TestSerial_RunsInOrderAndStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewSerial()
	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 10; i++ {
		i := i
		s.Defer(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	require.NoError(t, s.Do(context.Background(), func() {}))

	mu.Lock()
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
	mu.Unlock()

	s.Close()
	require.ErrorIs(t, s.Do(context.Background(), func() {}), ErrClosed)
}

func TestSerial_AfterAndCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewSerial()
	defer s.Close()

	fired := make(chan struct{})
	s.After(10*time.Millisecond, func() { close(fired) })

	canceled := s.After(10*time.Millisecond, func() { t.Error("canceled timer fired") })
	require.True(t, canceled())

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestSerial_PanicDoesNotKillLoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewSerial()
	defer s.Close()

	s.Defer(func() { panic("boom") })
	ok := false
	require.NoError(t, s.Do(context.Background(), func() { ok = true }))
	require.True(t, ok)
}
