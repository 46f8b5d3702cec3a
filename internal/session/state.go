// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import "github.com/ManuGH/branchplay/internal/fsm"

// State is the playback phase of a session.
type State string

const (
	StateNotStarted State = "not_started"
	StateLoading    State = "loading"
	StatePlaying    State = "playing"
	StatePaused     State = "paused"
	StateEnded      State = "ended"
)

// trigger drives the state machine.
type trigger string

const (
	triggerStart        trigger = "start"
	triggerLoad         trigger = "load"
	triggerPlay         trigger = "play"
	triggerPause        trigger = "pause"
	triggerEnd          trigger = "end"
	triggerPlayRejected trigger = "play_rejected"
	triggerReset        trigger = "reset"
)

var transitions = []fsm.Transition[State, trigger]{
	{From: StateNotStarted, Event: triggerStart, To: StateLoading},
	{From: StateNotStarted, Event: triggerLoad, To: StateNotStarted},
	{From: StateNotStarted, Event: triggerReset, To: StateNotStarted},

	{From: StateLoading, Event: triggerLoad, To: StateLoading},
	{From: StateLoading, Event: triggerPlay, To: StatePlaying},
	{From: StateLoading, Event: triggerPause, To: StatePaused},
	{From: StateLoading, Event: triggerEnd, To: StateEnded},
	{From: StateLoading, Event: triggerPlayRejected, To: StatePaused},
	{From: StateLoading, Event: triggerReset, To: StateNotStarted},

	{From: StatePlaying, Event: triggerLoad, To: StateLoading},
	{From: StatePlaying, Event: triggerPause, To: StatePaused},
	{From: StatePlaying, Event: triggerEnd, To: StateEnded},
	{From: StatePlaying, Event: triggerPlayRejected, To: StatePaused},
	{From: StatePlaying, Event: triggerReset, To: StateNotStarted},

	{From: StatePaused, Event: triggerLoad, To: StateLoading},
	{From: StatePaused, Event: triggerPlay, To: StatePlaying},
	{From: StatePaused, Event: triggerEnd, To: StateEnded},
	{From: StatePaused, Event: triggerReset, To: StateNotStarted},

	{From: StateEnded, Event: triggerLoad, To: StateLoading},
	{From: StateEnded, Event: triggerPlay, To: StatePlaying},
	{From: StateEnded, Event: triggerReset, To: StateNotStarted},
}

func newMachine() *fsm.Machine[State, trigger] {
	return fsm.MustNew(StateNotStarted, transitions)
}
