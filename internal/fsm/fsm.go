// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package fsm provides a small table-driven state machine.
package fsm

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned by Fire when no edge exists for the
// current state and event.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition describes a single edge in the FSM.
type Transition[S ~string, E ~string] struct {
	From  S
	Event E
	To    S
}

// Machine is a strict FSM runner: unknown transitions are errors and leave
// the state untouched. It is not safe for concurrent use; callers serialise
// access (the player runs on a single event loop).
type Machine[S ~string, E ~string] struct {
	state S
	index map[string]Transition[S, E]
}

// New builds a machine from a transition table. Duplicate (From, Event)
// pairs are rejected.
func New[S ~string, E ~string](initial S, transitions []Transition[S, E]) (*Machine[S, E], error) {
	idx := make(map[string]Transition[S, E], len(transitions))
	for _, t := range transitions {
		k := key(t.From, t.Event)
		if _, exists := idx[k]; exists {
			return nil, fmt.Errorf("duplicate transition: %s -> %s", t.From, t.Event)
		}
		idx[k] = t
	}
	return &Machine[S, E]{state: initial, index: idx}, nil
}

// MustNew is New for static tables; it panics on a malformed table.
func MustNew[S ~string, E ~string](initial S, transitions []Transition[S, E]) *Machine[S, E] {
	m, err := New(initial, transitions)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Machine[S, E]) State() S {
	return m.state
}

// Can reports whether event is allowed in the current state.
func (m *Machine[S, E]) Can(event E) bool {
	_, ok := m.index[key(m.state, event)]
	return ok
}

// Fire applies an event and returns the new state.
func (m *Machine[S, E]) Fire(event E) (S, error) {
	t, ok := m.index[key(m.state, event)]
	if !ok {
		return m.state, fmt.Errorf("%w: state=%s event=%s", ErrInvalidTransition, m.state, event)
	}
	m.state = t.To
	return m.state, nil
}

// Reset forces the machine into state s without consulting the table.
func (m *Machine[S, E]) Reset(s S) {
	m.state = s
}

func key[S ~string, E ~string](from S, event E) string {
	return string(from) + "|" + string(event)
}
