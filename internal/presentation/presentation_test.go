// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package presentation

import (
	"testing"
	"time"

	"github.com/ManuGH/branchplay/internal/loop"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	plainClip = playlist.Clip{ID: "plain", Src: "p.mp4"}
	richClip  = playlist.Clip{
		ID:    "rich",
		Src:   "r.mp4",
		Facts: []string{"Built 1120.", "Rebuilt 1480."},
		Modal: &playlist.Modal{Title: "History", Teaser: "Read more", Body: "**Title**\n\nPara one."},
	}
)

func TestTopBar_HidesAfterDelay(t *testing.T) {
	m := loop.NewManual()
	s := New(Config{ShowBar: true, Scheduler: m}, plainClip)
	require.True(t, s.View().BarVisible)

	m.Advance(DefaultHideDelay - time.Millisecond)
	assert.True(t, s.View().BarVisible)
	m.Advance(time.Millisecond)
	assert.False(t, s.View().BarVisible)
}

func TestTopBar_ActivityRestartsTimer(t *testing.T) {
	m := loop.NewManual()
	changes := 0
	s := New(Config{ShowBar: true, Scheduler: m, Changed: func() { changes++ }}, plainClip)

	m.Advance(1000 * time.Millisecond)
	s.PointerActivity()
	m.Advance(1000 * time.Millisecond)
	assert.True(t, s.View().BarVisible, "timer restarted by activity")

	m.Advance(600 * time.Millisecond)
	assert.False(t, s.View().BarVisible)
	assert.Equal(t, 1, changes)

	s.PointerActivity()
	assert.True(t, s.View().BarVisible)
	assert.Equal(t, 2, changes)
}

func TestTopBar_Disabled(t *testing.T) {
	m := loop.NewManual()
	s := New(Config{ShowBar: false, Scheduler: m}, plainClip)

	s.PointerActivity()
	v := s.View()
	assert.False(t, v.BarEnabled)
	assert.False(t, v.BarVisible)

	m.Advance(time.Hour)
	assert.False(t, s.View().BarVisible)
}

func TestInfoPanel_VisibleOnlyWithFacts(t *testing.T) {
	s := New(Config{Scheduler: loop.NewManual()}, plainClip)
	s.ToggleInfo()
	v := s.View()
	assert.True(t, v.PanelOpen)
	assert.False(t, v.PanelVisible)

	s.SetClip(richClip)
	v = s.View()
	assert.True(t, v.PanelVisible)
	assert.Equal(t, richClip.Facts, v.Facts)
}

func TestInfoPanel_KeyToggleCaseInsensitive(t *testing.T) {
	s := New(Config{Scheduler: loop.NewManual()}, richClip)

	require.True(t, s.KeyDown("i"))
	assert.True(t, s.View().PanelOpen)
	require.True(t, s.KeyDown("I"))
	assert.False(t, s.View().PanelOpen)
	assert.False(t, s.KeyDown("x"))
}

func TestPulse(t *testing.T) {
	s := New(Config{Scheduler: loop.NewManual()}, richClip)
	assert.True(t, s.View().Pulse)

	s.ToggleInfo()
	assert.False(t, s.View().Pulse)

	s.SetClip(plainClip)
	s.ToggleInfo()
	assert.False(t, s.View().Pulse, "no modal, no pulse")
}

func TestModal_OpenOnlyWhenDefined(t *testing.T) {
	s := New(Config{Scheduler: loop.NewManual()}, plainClip)
	assert.False(t, s.OpenModal())
	assert.False(t, s.View().ModalOpen)

	s.SetClip(richClip)
	s.ToggleInfo()
	require.True(t, s.OpenModal())
	v := s.View()
	require.NotNil(t, v.Modal)
	assert.Equal(t, "History", v.Modal.Title)
	assert.Equal(t, []playlist.Block{
		{Kind: playlist.BlockHeading, Text: "Title"},
		{Kind: playlist.BlockParagraph, Text: "Para one."},
	}, v.Modal.Blocks)
}

func TestEscape_ClosesModalBeforePanel(t *testing.T) {
	s := New(Config{Scheduler: loop.NewManual()}, richClip)
	s.ToggleInfo()
	s.OpenModal()

	require.True(t, s.KeyDown(KeyEscape))
	v := s.View()
	assert.False(t, v.ModalOpen)
	assert.True(t, v.PanelOpen)

	require.True(t, s.KeyDown(KeyEscape))
	assert.False(t, s.View().PanelOpen)

	assert.False(t, s.KeyDown(KeyEscape), "nothing left to close")
}

func TestModal_OpensFromVisiblePanelOnly(t *testing.T) {
	s := New(Config{Scheduler: loop.NewManual()}, richClip)
	assert.False(t, s.OpenModal(), "panel closed")
	assert.False(t, s.View().ModalOpen)

	s.ToggleInfo()
	require.True(t, s.OpenModal())
	s.CloseModal()

	noFacts := richClip
	noFacts.Facts = nil
	s.SetClip(noFacts)
	require.True(t, s.View().PanelOpen)
	require.False(t, s.View().PanelVisible)
	assert.False(t, s.OpenModal(), "panel without facts is not rendered")
	assert.False(t, s.View().ModalOpen)
}

func TestClipChangeClosesModal(t *testing.T) {
	s := New(Config{Scheduler: loop.NewManual()}, richClip)
	s.ToggleInfo()
	require.True(t, s.OpenModal())
	s.SetClip(richClip)
	assert.False(t, s.View().ModalOpen)
}

func TestClose_StopsTimer(t *testing.T) {
	m := loop.NewManual()
	s := New(Config{ShowBar: true, Scheduler: m}, plainClip)
	s.Close()
	m.Advance(time.Hour)
	assert.True(t, s.View().BarVisible)
}
