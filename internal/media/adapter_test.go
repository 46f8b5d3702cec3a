// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package media_test

import (
	"errors"
	"testing"

	"github.com/ManuGH/branchplay/internal/media"
	"github.com/ManuGH/branchplay/internal/media/mediatest"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mp4Clip  = playlist.Clip{ID: "intro", Src: "https://cdn.example.com/intro.mp4", Poster: "https://cdn.example.com/intro.jpg"}
	hlsClip  = playlist.Clip{ID: "gate", Src: "https://cdn.example.com/gate/master.m3u8?token=x"}
	hlsClip2 = playlist.Clip{ID: "hall", Src: "https://cdn.example.com/hall/master.M3U8"}
)

func TestAttach_DirectSource(t *testing.T) {
	surface := mediatest.NewFakeSurface()
	a := media.NewAdapter(surface, &mediatest.FakeStreamer{})

	mode := a.Attach(mp4Clip)

	assert.Equal(t, media.ModeDirect, mode)
	assert.False(t, a.Streaming())
	assert.Equal(t, []string{
		"source:https://cdn.example.com/intro.mp4",
		"poster:https://cdn.example.com/intro.jpg",
		"load",
	}, surface.CallLog())
}

func TestAttach_ManifestUsesStream(t *testing.T) {
	surface := mediatest.NewFakeSurface()
	streamer := &mediatest.FakeStreamer{}
	a := media.NewAdapter(surface, streamer)

	mode := a.Attach(hlsClip)

	require.Equal(t, media.ModeStream, mode)
	require.Len(t, streamer.Streams, 1)
	st := streamer.Streams[0]
	assert.Equal(t, hlsClip.Src, st.Manifest)
	assert.Same(t, surface, st.Surface)
	assert.True(t, a.Streaming())
	assert.Equal(t, []string{"poster:", "load"}, surface.CallLog())
}

func TestAttach_StreamingUnsupportedFallsBackToDirect(t *testing.T) {
	for name, streamer := range map[string]media.Streamer{
		"nil":         nil,
		"unsupported": &mediatest.FakeStreamer{Unsupported: true},
		"new fails":   &mediatest.FakeStreamer{NewErr: errors.New("no mse")},
	} {
		t.Run(name, func(t *testing.T) {
			surface := mediatest.NewFakeSurface()
			a := media.NewAdapter(surface, streamer)

			mode := a.Attach(hlsClip)

			assert.Equal(t, media.ModeDirect, mode)
			assert.Equal(t, hlsClip.Src, surface.Src)
			assert.False(t, a.Streaming())
		})
	}
}

func TestAttach_DestroysPreviousStreamFirst(t *testing.T) {
	surface := mediatest.NewFakeSurface()
	streamer := &mediatest.FakeStreamer{}
	a := media.NewAdapter(surface, streamer)

	a.Attach(hlsClip)
	a.Attach(hlsClip2)
	require.Len(t, streamer.Streams, 2)
	assert.True(t, streamer.Streams[0].Destroyed)
	assert.False(t, streamer.Streams[1].Destroyed)
	assert.Equal(t, 1, streamer.Live())

	a.Attach(mp4Clip)
	assert.Equal(t, 0, streamer.Live())
	assert.False(t, a.Streaming())
}

func TestRelease_TeardownErrorIsCountedNotReturned(t *testing.T) {
	surface := mediatest.NewFakeSurface()
	streamer := &mediatest.FakeStreamer{DestroyErr: errors.New("already detached")}
	a := media.NewAdapter(surface, streamer)

	before := testutil.ToFloat64(metrics.StreamTeardownFailuresTotal)
	a.Attach(hlsClip)
	a.Release()
	a.Release()

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StreamTeardownFailuresTotal))
	assert.False(t, a.Streaming())
}

func TestEventKindKnown(t *testing.T) {
	assert.True(t, media.EventTimeUpdate.Known())
	assert.False(t, media.EventKind("seeking").Known())
}
