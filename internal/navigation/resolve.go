// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package navigation maps viewer choices onto playlist positions.
package navigation

import "github.com/ManuGH/branchplay/internal/playlist"

// OutcomeKind is what a resolved choice asks the session to do.
type OutcomeKind string

const (
	// Stay leaves the session untouched. Broken targets resolve here.
	Stay OutcomeKind = "stay"
	// Jump activates the clip at Outcome.Index.
	Jump OutcomeKind = "jump"
	// Reset returns to the first clip and clears the started flag.
	Reset OutcomeKind = "reset"
)

// Outcome is the result of resolving a target.
type Outcome struct {
	Kind  OutcomeKind
	Index int
}

// Navigates reports whether the outcome changes the session.
func (o Outcome) Navigates() bool {
	return o.Kind != Stay
}

// Resolve is total over the target variants; anything it cannot place in
// the playlist yields Stay.
func Resolve(t playlist.Target, p *playlist.Playlist, current int) Outcome {
	switch t.Kind() {
	case playlist.TargetHome:
		return Outcome{Kind: Reset, Index: 0}
	case playlist.TargetAutoNext:
		return jumpIfInBounds(p, current+1, current)
	case playlist.TargetIndex:
		i, _ := t.IndexValue()
		return jumpIfInBounds(p, i, current)
	case playlist.TargetClip:
		id, _ := t.ClipIDValue()
		if p == nil {
			break
		}
		if i, ok := p.IndexOf(id); ok {
			return Outcome{Kind: Jump, Index: i}
		}
	}
	return Outcome{Kind: Stay, Index: current}
}

func jumpIfInBounds(p *playlist.Playlist, i, current int) Outcome {
	if p == nil || !p.InBounds(i) {
		return Outcome{Kind: Stay, Index: current}
	}
	return Outcome{Kind: Jump, Index: i}
}
