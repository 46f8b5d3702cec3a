// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package presentation tracks what the viewer sees around the video: the
// auto-hiding top bar, the info panel and the reading modal. It never
// affects playback.
package presentation

import (
	"time"

	"github.com/ManuGH/branchplay/internal/loop"
	"github.com/ManuGH/branchplay/internal/playlist"
)

// DefaultHideDelay is how long the top bar stays up after pointer activity.
const DefaultHideDelay = 1600 * time.Millisecond

const (
	KeyInfo   = "i"
	KeyEscape = "Escape"
)

// Config configures presentation state.
type Config struct {
	ShowBar   bool
	HideDelay time.Duration
	Scheduler loop.Scheduler
	// Changed runs on the loop after visibility changes.
	Changed func()
}

// View is the visible presentation state.
type View struct {
	BarEnabled   bool       `json:"barEnabled"`
	BarVisible   bool       `json:"barVisible"`
	PanelOpen    bool       `json:"panelOpen"`
	PanelVisible bool       `json:"panelVisible"`
	Pulse        bool       `json:"pulse"`
	Facts        []string   `json:"facts,omitempty"`
	HasModal     bool       `json:"hasModal"`
	ModalOpen    bool       `json:"modalOpen"`
	Modal        *ModalView `json:"modal,omitempty"`
}

// ModalView is an open reading modal.
type ModalView struct {
	Title  string           `json:"title"`
	Blocks []playlist.Block `json:"blocks"`
}

// State is the presentation state of one player. Like the session, it must
// only be used from the player loop.
type State struct {
	sched     loop.Scheduler
	showBar   bool
	delay     time.Duration
	changed   func()
	hideTimer loop.Cancel

	barVisible bool
	panelOpen  bool
	modalOpen  bool
	clip       playlist.Clip
}

// New returns presentation state for clip. With the bar enabled it starts
// visible and the hide timer is armed immediately.
func New(cfg Config, clip playlist.Clip) *State {
	if cfg.HideDelay <= 0 {
		cfg.HideDelay = DefaultHideDelay
	}
	s := &State{
		sched:     cfg.Scheduler,
		showBar:   cfg.ShowBar,
		delay:     cfg.HideDelay,
		changed:   cfg.Changed,
		hideTimer: loop.Noop,
		clip:      clip,
	}
	if s.showBar {
		s.barVisible = true
		s.armHide()
	}
	return s
}

func (s *State) armHide() {
	s.hideTimer()
	s.hideTimer = s.sched.After(s.delay, func() {
		s.hideTimer = loop.Noop
		if !s.barVisible {
			return
		}
		s.barVisible = false
		s.notify()
	})
}

// PointerActivity shows the bar and restarts the hide timer.
func (s *State) PointerActivity() {
	if !s.showBar {
		return
	}
	wasVisible := s.barVisible
	s.barVisible = true
	s.armHide()
	if !wasVisible {
		s.notify()
	}
}

// SetClip switches to a new clip. An open modal is closed.
func (s *State) SetClip(clip playlist.Clip) {
	s.clip = clip
	s.modalOpen = false
	s.notify()
}

// ToggleInfo opens or closes the info panel.
func (s *State) ToggleInfo() {
	s.panelOpen = !s.panelOpen
	s.notify()
}

// OpenModal opens the reading modal from the info panel. It reports false
// unless the panel is visible and the clip defines a modal.
func (s *State) OpenModal() bool {
	if s.clip.Modal == nil || !s.panelVisible() {
		return false
	}
	s.modalOpen = true
	s.notify()
	return true
}

// CloseModal closes the reading modal.
func (s *State) CloseModal() {
	if !s.modalOpen {
		return
	}
	s.modalOpen = false
	s.notify()
}

// KeyDown handles the keyboard shortcuts and reports whether key was used.
// "i" toggles the info panel in either case; Escape closes the modal first
// and the panel otherwise.
func (s *State) KeyDown(key string) bool {
	switch key {
	case KeyInfo, "I":
		s.ToggleInfo()
		return true
	case KeyEscape:
		switch {
		case s.modalOpen:
			s.CloseModal()
		case s.panelOpen:
			s.panelOpen = false
			s.notify()
		default:
			return false
		}
		return true
	}
	return false
}

// panelVisible reports whether the info panel is rendered. It needs facts.
func (s *State) panelVisible() bool { return s.panelOpen && len(s.clip.Facts) > 0 }

// View returns the visible state.
func (s *State) View() View {
	hasFacts := len(s.clip.Facts) > 0
	hasModal := s.clip.Modal != nil
	v := View{
		BarEnabled:   s.showBar,
		BarVisible:   s.showBar && s.barVisible,
		PanelOpen:    s.panelOpen,
		PanelVisible: s.panelVisible(),
		Pulse:        hasModal && !s.panelOpen,
		HasModal:     hasModal,
		ModalOpen:    s.modalOpen && hasModal,
	}
	if hasFacts {
		v.Facts = append([]string(nil), s.clip.Facts...)
	}
	if v.ModalOpen {
		v.Modal = &ModalView{Title: s.clip.Modal.Title, Blocks: s.clip.Modal.Blocks()}
	}
	return v
}

// Close stops the hide timer.
func (s *State) Close() {
	s.hideTimer()
	s.hideTimer = loop.Noop
}

func (s *State) notify() {
	if s.changed != nil {
		s.changed()
	}
}
