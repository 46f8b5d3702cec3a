// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Invariants(t *testing.T) {
	_, err := New("", nil)
	require.ErrorIs(t, err, ErrEmptyPlaylist)

	_, err = New("", []Clip{{ID: "", Src: "a.mp4"}})
	require.ErrorIs(t, err, ErrMissingClipID)

	_, err = New("", []Clip{{ID: "a"}})
	require.ErrorIs(t, err, ErrMissingSource)

	_, err = New("", []Clip{{ID: "a", Src: "a.mp4"}, {ID: "a", Src: "b.mp4"}})
	require.ErrorIs(t, err, ErrDuplicateClip)
}

func TestPlaylist_Lookup(t *testing.T) {
	clips := []Clip{{ID: "a", Src: "a.mp4"}, {ID: "b", Src: "b.m3u8"}}
	p, err := New("Castle", clips)
	require.NoError(t, err)

	clips[0].ID = "mutated"
	c, ok := p.Clip(0)
	require.True(t, ok)
	require.Equal(t, "a", c.ID, "playlist must not alias the input slice")

	i, ok := p.IndexOf("b")
	require.True(t, ok)
	require.Equal(t, 1, i)

	_, ok = p.IndexOf("zzz")
	require.False(t, ok)

	_, ok = p.Clip(2)
	require.False(t, ok)
	require.False(t, p.InBounds(-1))
	require.Equal(t, 2, p.Len())
	require.Equal(t, "Castle", p.Title())
}

func TestIsManifest(t *testing.T) {
	require.True(t, IsManifest("/media/castle.m3u8"))
	require.True(t, IsManifest("https://cdn.example.com/a/MASTER.M3U8?token=1"))
	require.False(t, IsManifest("/media/castle.mp4"))
	require.False(t, IsManifest("https://cdn.example.com/a.mp4?x=.m3u8"))
}

func TestHotspot_Shape(t *testing.T) {
	require.Equal(t, ShapeRect, Hotspot{Rect: &Rect{}}.Shape())
	require.Equal(t, ShapePath, Hotspot{Path: []Keyframe{{T: 0}}}.Shape())
	require.Equal(t, ShapeRect, Hotspot{Rect: &Rect{}, Path: []Keyframe{{T: 0}}}.Shape())
	require.Equal(t, ShapeNone, Hotspot{}.Shape())
}
