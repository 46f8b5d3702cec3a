// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package player composes a playback session, hotspot evaluation and
// presentation state into one viewer-facing engine.
package player

import (
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/branchplay/internal/events"
	"github.com/ManuGH/branchplay/internal/hotspot"
	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/loop"
	"github.com/ManuGH/branchplay/internal/media"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/ManuGH/branchplay/internal/navigation"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/ManuGH/branchplay/internal/presentation"
	"github.com/ManuGH/branchplay/internal/session"
	"github.com/rs/zerolog"
)

var (
	ErrNoChoices      = errors.New("player: no choices are offered")
	ErrNoSuchChoice   = errors.New("player: choice index out of range")
	ErrNoSuchHotspot  = errors.New("player: hotspot is not active")
	ErrNotInteractive = errors.New("player: hotspot is not interactive")
)

// Options are the runtime settings supplied at construction.
type Options struct {
	// Title overrides the playlist title on the top bar.
	Title       string
	AutoAdvance bool
	ShowBar     bool
	HideDelay   time.Duration
}

// DefaultOptions returns auto-advance off and the top bar on.
func DefaultOptions() Options {
	return Options{ShowBar: true, HideDelay: presentation.DefaultHideDelay}
}

// Config wires a player.
type Config struct {
	ID        string
	Playlist  *playlist.Playlist
	Surface   media.Surface
	Streamer  media.Streamer
	Scheduler loop.Scheduler
	Sink      events.Sink
	Options   Options
	// Changed runs on the loop after any visible change.
	Changed func()
	Now     func() time.Time
}

// Player is the engine of one viewer. Use it only from its loop.
type Player struct {
	id      string
	title   string
	pl      *playlist.Playlist
	sess    *session.Session
	pres    *presentation.State
	active  []hotspot.Active
	changed func()
	logger  zerolog.Logger
	ready   bool
}

// New builds a player positioned on the first clip, not started.
func New(cfg Config) (*Player, error) {
	if cfg.Playlist == nil || cfg.Playlist.Len() == 0 {
		return nil, session.ErrNoPlaylist
	}
	p := &Player{
		id:      cfg.ID,
		title:   cfg.Options.Title,
		pl:      cfg.Playlist,
		changed: cfg.Changed,
		logger:  xglog.WithComponent("player").With().Str(xglog.FieldSessionID, cfg.ID).Logger(),
	}
	if p.title == "" {
		p.title = cfg.Playlist.Title()
	}
	first, _ := cfg.Playlist.Clip(0)
	p.pres = presentation.New(presentation.Config{
		ShowBar:   cfg.Options.ShowBar,
		HideDelay: cfg.Options.HideDelay,
		Scheduler: cfg.Scheduler,
		Changed:   p.notify,
	}, first)

	sess, err := session.New(session.Config{
		ID:          cfg.ID,
		Playlist:    cfg.Playlist,
		Surface:     cfg.Surface,
		Streamer:    cfg.Streamer,
		Scheduler:   cfg.Scheduler,
		Sink:        cfg.Sink,
		AutoAdvance: cfg.Options.AutoAdvance,
		Now:         cfg.Now,
		Hooks: session.Hooks{
			Activated: p.onActivated,
			Progress:  p.onProgress,
			Changed:   p.notify,
		},
	})
	if err != nil {
		p.pres.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}
	p.sess = sess
	p.ready = true
	return p, nil
}

func (p *Player) onActivated(i int) {
	clip, _ := p.pl.Clip(i)
	p.pres.SetClip(clip)
	p.active = hotspot.Evaluate(clip.Hotspots, 0)
}

func (p *Player) onProgress(elapsed float64) {
	p.active = hotspot.Evaluate(p.sess.Clip().Hotspots, elapsed)
}

func (p *Player) notify() {
	if !p.ready || p.changed == nil {
		return
	}
	p.changed()
}

// Session exposes the underlying playback session.
func (p *Player) Session() *session.Session { return p.sess }

// Start begins the experience from the start screen.
func (p *Player) Start() { p.sess.Start() }

// Toggle flips play and pause, as a click on the video does.
func (p *Player) Toggle() { p.sess.Toggle() }

func (p *Player) Play()  { p.sess.Play() }
func (p *Player) Pause() { p.sess.Pause() }

// GoHome is the Home control on the top bar. It resets without a
// choice_selected event.
func (p *Player) GoHome() { p.sess.Reset() }

// SetAutoAdvance changes the end-of-clip policy at runtime.
func (p *Player) SetAutoAdvance(on bool) { p.sess.SetAutoAdvance(on) }

// Choices returns the end-of-clip choices while the end overlay is shown.
func (p *Player) Choices() []playlist.CTA {
	snap := p.sess.Snapshot()
	if !snap.Started || !snap.Ended {
		return nil
	}
	return navigation.EndChoices(p.sess.Clip())
}

// SelectChoice picks the end-overlay choice at index i.
func (p *Player) SelectChoice(i int) (navigation.Outcome, error) {
	choices := p.Choices()
	if len(choices) == 0 {
		return navigation.Outcome{}, ErrNoChoices
	}
	if i < 0 || i >= len(choices) {
		return navigation.Outcome{}, fmt.Errorf("%w: %d of %d", ErrNoSuchChoice, i, len(choices))
	}
	c := choices[i]
	return p.sess.Choose(c.Label, c.GoTo, metrics.SourceCTA), nil
}

// SelectHotspot activates the live hotspot with the given clip-local index.
func (p *Player) SelectHotspot(index int) (navigation.Outcome, error) {
	h, ok := hotspot.Find(p.active, index)
	if !ok {
		return navigation.Outcome{}, fmt.Errorf("%w: %d", ErrNoSuchHotspot, index)
	}
	if !h.Interactive {
		return navigation.Outcome{}, fmt.Errorf("%w: %d", ErrNotInteractive, index)
	}
	return p.sess.Choose(h.Label, h.Target, metrics.SourceHotspot), nil
}

func (p *Player) PointerActivity()        { p.pres.PointerActivity() }
func (p *Player) ToggleInfo()             { p.pres.ToggleInfo() }
func (p *Player) OpenModal() bool         { return p.pres.OpenModal() }
func (p *Player) CloseModal()             { p.pres.CloseModal() }
func (p *Player) KeyDown(key string) bool { return p.pres.KeyDown(key) }

// Close releases the surface bindings and timers.
func (p *Player) Close() {
	p.sess.Close()
	p.pres.Close()
}
