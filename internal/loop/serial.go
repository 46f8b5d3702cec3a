// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package loop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/rs/zerolog"
)

// ErrClosed is returned when work is submitted to a closed loop.
var ErrClosed = errors.New("loop closed")

// Serial is a goroutine-backed event loop. Producers on any goroutine may
// schedule work; all work executes on the loop goroutine in FIFO order.
type Serial struct {
	mu     sync.Mutex
	queue  []*task
	closed bool

	wake    chan struct{}
	stopped chan struct{}
	logger  zerolog.Logger
}

// NewSerial starts a loop goroutine. Call Close to stop it.
func NewSerial() *Serial {
	s := &Serial{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		logger:  xglog.WithComponent("loop"),
	}
	go s.run()
	return s
}

func (s *Serial) enqueue(t *task) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, t)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Defer implements Scheduler.
func (s *Serial) Defer(fn func()) Cancel {
	t := newTask(fn)
	if !s.enqueue(t) {
		return Noop
	}
	return t.cancel
}

// After implements Scheduler.
func (s *Serial) After(d time.Duration, fn func()) Cancel {
	t := newTask(fn)
	timer := time.AfterFunc(d, func() { s.enqueue(t) })
	return func() bool {
		timer.Stop()
		return t.cancel()
	}
}

// Do runs fn on the loop and waits for it to finish.
func (s *Serial) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	t := newTask(func() {
		defer close(done)
		fn()
	})
	if !s.enqueue(t) {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		// The loop may have finished the task right before stopping.
		select {
		case <-done:
			return nil
		default:
		}
		t.cancel()
		return ErrClosed
	case <-ctx.Done():
		if t.cancel() {
			return fmt.Errorf("loop task: %w", ctx.Err())
		}
		// Already running; wait for completion to keep run-to-completion.
		<-done
		return nil
	}
}

// Close stops the loop. Pending work is dropped.
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.stopped
		return
	}
	s.closed = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	<-s.stopped
}

func (s *Serial) run() {
	defer close(s.stopped)
	for {
		s.mu.Lock()
		if s.closed {
			for _, t := range s.queue {
				t.cancel()
			}
			s.queue = nil
			s.mu.Unlock()
			return
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			<-s.wake
			continue
		}
		t := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.exec(t)
	}
}

func (s *Serial) exec(t *task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str(xglog.FieldEvent, "loop.task_panic").
				Interface("panic", r).
				Msg("loop task panicked")
		}
	}()
	t.run()
}

var _ Scheduler = (*Serial)(nil)
