// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package player

import (
	"github.com/ManuGH/branchplay/internal/hotspot"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/ManuGH/branchplay/internal/presentation"
	"github.com/ManuGH/branchplay/internal/session"
)

// ClipView describes the current clip.
type ClipView struct {
	Index  int    `json:"index"`
	Count  int    `json:"count"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	Poster string `json:"poster,omitempty"`
}

// Choice is one button of the end overlay.
type Choice struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// View is everything a client needs to render the player.
type View struct {
	Title        string            `json:"title"`
	Clip         ClipView          `json:"clip"`
	Session      session.Snapshot  `json:"session"`
	Progress     float64           `json:"progress"`
	StartScreen  bool              `json:"startScreen"`
	EndOverlay   bool              `json:"endOverlay"`
	Choices      []Choice          `json:"choices,omitempty"`
	Hotspots     []hotspot.Active  `json:"hotspots,omitempty"`
	Presentation presentation.View `json:"presentation"`
}

// View returns a snapshot of the player.
func (p *Player) View() View {
	snap := p.sess.Snapshot()
	clip := p.sess.Clip()
	v := View{
		Title: p.title,
		Clip: ClipView{
			Index:  snap.Index,
			Count:  p.pl.Len(),
			ID:     clip.ID,
			Title:  clip.Title,
			Poster: clip.Poster,
		},
		Session:      snap,
		Progress:     ProgressPercent(snap.Elapsed, snap.Duration),
		StartScreen:  !snap.Started,
		EndOverlay:   snap.Started && snap.Ended,
		Presentation: p.pres.View(),
	}
	for i, c := range p.Choices() {
		v.Choices = append(v.Choices, Choice{Index: i, Label: c.Label})
	}
	if len(p.active) > 0 {
		v.Hotspots = append([]hotspot.Active(nil), p.active...)
	}
	return v
}

// ProgressPercent is elapsed/duration in percent, 0 while the duration is
// unknown.
func ProgressPercent(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	pct := elapsed / duration * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// ActiveHotspots returns the hotspots live at the current position.
func (p *Player) ActiveHotspots() []hotspot.Active {
	return append([]hotspot.Active(nil), p.active...)
}

// Clip returns the current clip.
func (p *Player) Clip() playlist.Clip { return p.sess.Clip() }
