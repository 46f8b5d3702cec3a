// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package events defines the player lifecycle events and the sinks that
// consume them.
package events

import (
	"sync"
	"time"
)

// Kind names a lifecycle event.
type Kind string

const (
	KindClipLoaded     Kind = "clip_loaded"
	KindPlay           Kind = "play"
	KindPause          Kind = "pause"
	KindClipEnded      Kind = "clip_ended"
	KindChoiceSelected Kind = "choice_selected"
)

// Event is emitted synchronously at the point of occurrence. Position is set
// for play and pause, Label for choice_selected.
type Event struct {
	Kind      Kind      `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
	ClipID    string    `json:"clipId"`
	Position  float64   `json:"position,omitempty"`
	Label     string    `json:"label,omitempty"`
	At        time.Time `json:"at"`
}

// Sink consumes lifecycle events. Emit is called on the player loop and must
// return quickly; sinks that do I/O hand off to their own goroutine.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans an event out to several sinks in order.
type Multi []Sink

func (m Multi) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
