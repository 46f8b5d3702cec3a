// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package loop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by the caller. Deferred work runs
// only when RunPending is called, timers fire only when Advance moves the
// virtual clock past their deadline.
type Manual struct {
	now    time.Duration
	seq    int
	queue  []*task
	timers []*manualTimer
}

type manualTimer struct {
	at  time.Duration
	seq int
	t   *task
}

func NewManual() *Manual {
	return &Manual{}
}

// Defer implements Scheduler.
func (m *Manual) Defer(fn func()) Cancel {
	t := newTask(fn)
	m.queue = append(m.queue, t)
	return t.cancel
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) Cancel {
	t := newTask(fn)
	m.seq++
	m.timers = append(m.timers, &manualTimer{at: m.now + d, seq: m.seq, t: t})
	return t.cancel
}

// Pending returns the number of queued deferred callbacks (canceled ones
// included until they are drained).
func (m *Manual) Pending() int {
	return len(m.queue)
}

// RunPending drains the queue, including work scheduled while draining.
// It returns the number of callbacks that actually ran.
func (m *Manual) RunPending() int {
	ran := 0
	for len(m.queue) > 0 {
		t := m.queue[0]
		m.queue = m.queue[1:]
		if t.run() {
			ran++
		}
	}
	return ran
}

// Advance moves the virtual clock forward and fires due timers in deadline
// order, draining deferred work after each one.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		sort.Slice(m.timers, func(i, j int) bool {
			if m.timers[i].at == m.timers[j].at {
				return m.timers[i].seq < m.timers[j].seq
			}
			return m.timers[i].at < m.timers[j].at
		})
		if len(m.timers) == 0 || m.timers[0].at > target {
			break
		}
		next := m.timers[0]
		m.timers = m.timers[1:]
		m.now = next.at
		m.queue = append(m.queue, next.t)
		m.RunPending()
	}
	m.now = target
	m.RunPending()
}

// Now returns the virtual time elapsed since construction.
func (m *Manual) Now() time.Duration {
	return m.now
}

var _ Scheduler = (*Manual)(nil)
