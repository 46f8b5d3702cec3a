// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session owns the playback state of one viewer: the current clip,
// play/pause, elapsed time and the end-of-clip flag. It reacts to media
// events from its surface and emits lifecycle events.
//
// A Session is not safe for concurrent use. Every method and every surface
// listener must run on the session's loop.
package session

import (
	"errors"
	"time"

	"github.com/ManuGH/branchplay/internal/events"
	"github.com/ManuGH/branchplay/internal/fsm"
	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/loop"
	"github.com/ManuGH/branchplay/internal/media"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/ManuGH/branchplay/internal/navigation"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/rs/zerolog"
)

var (
	ErrNoPlaylist = errors.New("session: playlist is required")
	ErrNoSurface  = errors.New("session: surface is required")
	ErrNoLoop     = errors.New("session: scheduler is required")
)

// Hooks are called synchronously on the loop after the session changes.
type Hooks struct {
	// Activated runs after a clip has been attached and its listeners bound.
	Activated func(index int)
	// Progress runs when elapsed time moves.
	Progress func(elapsed float64)
	// Changed runs after any externally visible change.
	Changed func()
}

// Config wires a session to its collaborators.
type Config struct {
	ID          string
	Playlist    *playlist.Playlist
	Surface     media.Surface
	Streamer    media.Streamer
	Scheduler   loop.Scheduler
	Sink        events.Sink
	AutoAdvance bool
	Hooks       Hooks
	Now         func() time.Time
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Index       int     `json:"index"`
	ClipID      string  `json:"clipId"`
	State       State   `json:"state"`
	Started     bool    `json:"started"`
	Playing     bool    `json:"playing"`
	Ended       bool    `json:"ended"`
	Elapsed     float64 `json:"elapsed"`
	Duration    float64 `json:"duration"`
	AutoAdvance bool    `json:"autoAdvance"`
}

// Session is the playback state machine of one viewer.
type Session struct {
	id       string
	pl       *playlist.Playlist
	surface  media.Surface
	adapter  *media.Adapter
	sched    loop.Scheduler
	sink     events.Sink
	hooks    Hooks
	now      func() time.Time
	logger   zerolog.Logger
	machine  *fsm.Machine[State, trigger]
	binding  *binding
	startJob loop.Cancel

	index          int
	started        bool
	playing        bool
	ended          bool
	elapsed        float64
	duration       float64
	metadataLoaded bool
	autoAdvance    bool
	closed         bool
}

// New creates a session at index 0, not started, with the first clip
// attached to the surface.
func New(cfg Config) (*Session, error) {
	if cfg.Playlist == nil || cfg.Playlist.Len() == 0 {
		return nil, ErrNoPlaylist
	}
	if cfg.Surface == nil {
		return nil, ErrNoSurface
	}
	if cfg.Scheduler == nil {
		return nil, ErrNoLoop
	}
	if cfg.Sink == nil {
		cfg.Sink = events.Discard
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Session{
		id:          cfg.ID,
		pl:          cfg.Playlist,
		surface:     cfg.Surface,
		adapter:     media.NewAdapter(cfg.Surface, cfg.Streamer),
		sched:       cfg.Scheduler,
		sink:        cfg.Sink,
		hooks:       cfg.Hooks,
		now:         cfg.Now,
		machine:     newMachine(),
		autoAdvance: cfg.AutoAdvance,
		startJob:    loop.Noop,
	}
	s.logger = xglog.WithComponent("session").With().Str(xglog.FieldSessionID, cfg.ID).Logger()
	s.activate(0)
	return s, nil
}

// Playlist returns the playlist the session was created with.
func (s *Session) Playlist() *playlist.Playlist { return s.pl }

// Clip returns the current clip.
func (s *Session) Clip() playlist.Clip {
	c, _ := s.pl.Clip(s.index)
	return c
}

// Index returns the current clip index.
func (s *Session) Index() int { return s.index }

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Index:       s.index,
		ClipID:      s.Clip().ID,
		State:       s.machine.State(),
		Started:     s.started,
		Playing:     s.playing,
		Ended:       s.ended,
		Elapsed:     s.elapsed,
		Duration:    s.duration,
		AutoAdvance: s.autoAdvance,
	}
}

// Start marks the session started. Playback begins on the next tick once
// metadata is known.
func (s *Session) Start() {
	if s.closed || s.started {
		return
	}
	s.started = true
	s.fire(triggerStart)
	if s.metadataLoaded {
		s.scheduleStart()
	}
	s.changed()
}

// Toggle pauses a playing session and plays otherwise.
func (s *Session) Toggle() {
	if s.playing {
		s.Pause()
		return
	}
	s.Play()
}

// Play starts playback immediately. Before Start it behaves like Start.
func (s *Session) Play() {
	if s.closed {
		return
	}
	if !s.started {
		s.Start()
		return
	}
	if s.playing {
		return
	}
	s.startJob()
	s.beginPlayback()
}

// Pause stops playback and cancels a pending deferred start. Pausing while
// the clip is still loading keeps it from starting once metadata arrives.
func (s *Session) Pause() {
	if s.closed {
		return
	}
	s.startJob()
	s.startJob = loop.Noop
	if !s.playing {
		if s.machine.State() == StateLoading {
			s.fire(triggerPause)
			s.changed()
		}
		return
	}
	s.surface.Pause()
	s.playing = false
	s.fire(triggerPause)
	s.emit(events.Event{Kind: events.KindPause, Position: s.surface.CurrentTime()})
	s.changed()
}

// SetAutoAdvance changes the end-of-clip policy.
func (s *Session) SetAutoAdvance(on bool) {
	s.autoAdvance = on
	s.changed()
}

// Choose resolves target against the playlist. A navigating outcome is
// announced with choice_selected carrying label, then applied. source labels
// the navigation metric ("cta" or "hotspot").
func (s *Session) Choose(label string, target playlist.Target, source string) navigation.Outcome {
	if s.closed {
		return navigation.Outcome{Kind: navigation.Stay, Index: s.index}
	}
	out := navigation.Resolve(target, s.pl, s.index)
	metrics.IncNavigation(source, string(out.Kind))
	if !out.Navigates() {
		s.logger.Debug().
			Str(xglog.FieldEvent, "session.choice_ignored").
			Str(xglog.FieldLabel, label).
			Str(xglog.FieldTarget, target.String()).
			Msg("choice target does not resolve")
		return out
	}

	s.emit(events.Event{Kind: events.KindChoiceSelected, Label: label})
	switch out.Kind {
	case navigation.Reset:
		s.Reset()
	case navigation.Jump:
		s.activate(out.Index)
		s.changed()
	}
	return out
}

// Reset returns to the first clip, not started, not playing, no end overlay.
func (s *Session) Reset() {
	if s.closed {
		return
	}
	s.surface.Pause()
	s.playing = false
	s.ended = false
	s.started = false
	s.fire(triggerReset)
	s.activate(0)
	s.changed()
}

// Close releases the listener bundle and any stream handle.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.startJob()
	s.binding.release()
	s.binding = nil
	s.adapter.Release()
}

// activate tears down the previous clip and attaches clip i. Teardown of the
// listener bundle and the stream completes before the new source is touched.
func (s *Session) activate(i int) {
	s.binding.release()
	s.binding = nil
	s.adapter.Release()
	s.startJob()
	s.startJob = loop.Noop

	s.index = i
	s.elapsed = 0
	s.duration = 0
	s.ended = false
	s.playing = false
	s.metadataLoaded = false
	s.fire(triggerLoad)

	clip := s.Clip()
	mode := s.adapter.Attach(clip)
	s.binding = bind(s.surface, handlers{
		media.EventLoadedMetadata: s.onMetadata,
		media.EventTimeUpdate:     s.onTimeUpdate,
		media.EventEnded:          s.onEnded,
		media.EventPlayRejected:   s.onPlayRejected,
	})

	s.logger.Debug().
		Str(xglog.FieldEvent, "session.clip_activated").
		Str(xglog.FieldClipID, clip.ID).
		Int(xglog.FieldClipIndex, i).
		Str("mode", string(mode)).
		Msg("clip activated")
	if s.hooks.Activated != nil {
		s.hooks.Activated(i)
	}
}

func (s *Session) scheduleStart() {
	s.startJob()
	s.startJob = s.sched.Defer(s.beginPlayback)
}

func (s *Session) beginPlayback() {
	s.startJob = loop.Noop
	if s.closed || s.playing {
		return
	}
	if err := s.surface.Play(); err != nil {
		s.rejectPlay(err)
		return
	}
	s.playing = true
	s.ended = false
	s.fire(triggerPlay)
	s.emit(events.Event{Kind: events.KindPlay, Position: s.surface.CurrentTime()})
	s.changed()
}

func (s *Session) rejectPlay(err error) {
	metrics.IncPlayRejected()
	s.logger.Debug().
		Err(err).
		Str(xglog.FieldEvent, "session.play_rejected").
		Str(xglog.FieldClipID, s.Clip().ID).
		Msg("playback start rejected")
	wasPlaying := s.playing
	s.playing = false
	if s.machine.Can(triggerPlayRejected) {
		s.fire(triggerPlayRejected)
	}
	if wasPlaying {
		s.changed()
	}
}

func (s *Session) onMetadata() {
	s.metadataLoaded = true
	s.duration = s.surface.Duration()
	s.emit(events.Event{Kind: events.KindClipLoaded})
	// Only a clip still waiting to play starts on its own; an explicit play
	// or pause before metadata wins.
	if s.started && !s.playing && s.machine.State() == StateLoading {
		s.scheduleStart()
	}
	s.changed()
}

func (s *Session) onTimeUpdate() {
	t := s.surface.CurrentTime()
	if t == s.elapsed {
		return
	}
	s.elapsed = t
	if s.hooks.Progress != nil {
		s.hooks.Progress(t)
	}
	s.changed()
}

func (s *Session) onEnded() {
	s.emit(events.Event{Kind: events.KindClipEnded})
	if s.autoAdvance && s.pl.InBounds(s.index+1) {
		s.activate(s.index + 1)
		s.changed()
		return
	}
	s.playing = false
	s.ended = true
	s.fire(triggerEnd)
	s.changed()
}

func (s *Session) onPlayRejected() {
	if !s.playing {
		return
	}
	s.rejectPlay(media.ErrPlayRejected)
}

func (s *Session) fire(t trigger) {
	from := s.machine.State()
	to, err := s.machine.Fire(t)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str(xglog.FieldEvent, "session.transition_ignored").
			Msg("state transition not allowed")
		return
	}
	if from != to {
		s.logger.Debug().
			Str(xglog.FieldEvent, "session.transition").
			Str(xglog.FieldOldState, string(from)).
			Str(xglog.FieldNewState, string(to)).
			Msg("state changed")
	}
}

func (s *Session) emit(e events.Event) {
	e.SessionID = s.id
	if e.ClipID == "" {
		e.ClipID = s.Clip().ID
	}
	e.At = s.now()
	s.sink.Emit(e)
}

func (s *Session) changed() {
	if s.hooks.Changed != nil {
		s.hooks.Changed()
	}
}

