// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package loop provides the cooperative, single-threaded scheduling model the
// player runs on. Every callback scheduled through a Scheduler runs to
// completion before the next one starts.
package loop

import (
	"sync/atomic"
	"time"
)

// Cancel prevents a scheduled callback from running. It reports whether the
// callback was still pending.
type Cancel func() bool

// Scheduler schedules callbacks onto the loop.
type Scheduler interface {
	// Defer runs fn on the next tick, never synchronously.
	Defer(fn func()) Cancel
	// After runs fn on the loop once d has elapsed.
	After(d time.Duration, fn func()) Cancel
}

const (
	taskPending int32 = iota
	taskRan
	taskCanceled
)

type task struct {
	fn    func()
	state atomic.Int32
}

func newTask(fn func()) *task {
	return &task{fn: fn}
}

func (t *task) cancel() bool {
	return t.state.CompareAndSwap(taskPending, taskCanceled)
}

// run executes fn unless the task was canceled first.
func (t *task) run() bool {
	if !t.state.CompareAndSwap(taskPending, taskRan) {
		return false
	}
	t.fn()
	return true
}

// Noop is a Cancel for callbacks that were never scheduled.
func Noop() bool { return false }
