// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package remote

import (
	"context"
	"testing"

	"github.com/ManuGH/branchplay/internal/bus"
	"github.com/ManuGH/branchplay/internal/loop"
	"github.com/ManuGH/branchplay/internal/media"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/ManuGH/branchplay/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSurface(t *testing.T) (*Surface, bus.Subscriber) {
	t.Helper()
	b := bus.NewMemoryBusWithBuffer(64)
	sub, err := b.Subscribe(context.Background(), "session/t")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })
	return NewSurface(b, "session/t"), sub
}

func drain(sub bus.Subscriber) []Command {
	var out []Command
	for {
		select {
		case m := <-sub.C():
			out = append(out, m.(Command))
		default:
			return out
		}
	}
}

func ptr(f float64) *float64 { return &f }

func TestSurface_CommandsInOrder(t *testing.T) {
	s, sub := newTestSurface(t)

	s.SetSource("a.mp4")
	s.SetPoster("a.jpg")
	s.Load()
	require.NoError(t, s.Play())
	s.Pause()

	cmds := drain(sub)
	require.Len(t, cmds, 5)
	ops := make([]string, 0, len(cmds))
	for i, c := range cmds {
		assert.Equal(t, uint64(i+1), c.Seq)
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{OpSource, OpPoster, OpLoad, OpPlay, OpPause}, ops)
	assert.Equal(t, "a.mp4", cmds[0].Src)
	assert.True(t, s.Paused())
}

func TestSurface_DispatchUpdatesStateAndCallsListeners(t *testing.T) {
	s, _ := newTestSurface(t)

	var order []string
	unA := s.Listen(media.EventTimeUpdate, func() { order = append(order, "a") })
	s.Listen(media.EventTimeUpdate, func() { order = append(order, "b") })
	require.Equal(t, 2, s.ListenerCount())

	require.NoError(t, s.Dispatch(Report{Type: media.EventTimeUpdate, CurrentTime: ptr(3.5)}))
	assert.Equal(t, 3.5, s.CurrentTime())
	assert.Equal(t, []string{"a", "b"}, order)

	unA()
	unA()
	order = nil
	require.NoError(t, s.Dispatch(Report{Type: media.EventTimeUpdate}))
	assert.Equal(t, []string{"b"}, order)
	assert.Equal(t, 1, s.ListenerCount())
}

func TestSurface_DispatchRejectsUnknown(t *testing.T) {
	s, _ := newTestSurface(t)
	err := s.Dispatch(Report{Type: "seeking"})
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestSurface_MetadataAndEnded(t *testing.T) {
	s, _ := newTestSurface(t)
	require.NoError(t, s.Play())
	require.False(t, s.Paused())

	require.NoError(t, s.Dispatch(Report{Type: media.EventLoadedMetadata, Duration: ptr(42)}))
	assert.Equal(t, 42.0, s.Duration())

	require.NoError(t, s.Dispatch(Report{Type: media.EventEnded, CurrentTime: ptr(42)}))
	assert.True(t, s.Paused())
}

func TestSurface_DropsReportsForReplacedSource(t *testing.T) {
	s, sub := newTestSurface(t)
	assert.Zero(t, s.Generation())

	s.SetSource("a.mp4")
	s.Load()
	first := s.Generation()
	cmds := drain(sub)
	require.Len(t, cmds, 2)
	assert.Equal(t, cmds[1].Seq, first)

	fired := 0
	s.Listen(media.EventEnded, func() { fired++ })
	require.NoError(t, s.Dispatch(Report{Type: media.EventTimeUpdate, Load: first, CurrentTime: ptr(4)}))

	s.SetSource("b.mp4")
	s.Load()
	require.Greater(t, s.Generation(), first)

	err := s.Dispatch(Report{Type: media.EventEnded, Load: first, CurrentTime: ptr(9)})
	require.ErrorIs(t, err, ErrStaleReport)
	assert.Zero(t, fired)
	assert.Zero(t, s.CurrentTime(), "stale time must not leak into the new source")
	assert.True(t, s.Paused())

	require.ErrorIs(t, s.Dispatch(Report{Type: media.EventEnded}), ErrStaleReport, "reports must name their load")
	require.NoError(t, s.Dispatch(Report{Type: media.EventEnded, Load: s.Generation()}))
	assert.Equal(t, 1, fired)
}

func TestSurface_LateEndedDoesNotSkipClip(t *testing.T) {
	s, _ := newTestSurface(t)
	pl, err := playlist.New("", []playlist.Clip{
		{ID: "a", Src: "a.mp4"},
		{ID: "b", Src: "b.mp4"},
		{ID: "c", Src: "c.mp4"},
	})
	require.NoError(t, err)
	sched := loop.NewManual()
	sess, err := session.New(session.Config{
		Playlist:    pl,
		Surface:     s,
		Streamer:    NewStreamer(s, false),
		Scheduler:   sched,
		AutoAdvance: true,
	})
	require.NoError(t, err)
	defer sess.Close()

	sess.Start()
	loadA := s.Generation()
	require.NoError(t, s.Dispatch(Report{Type: media.EventLoadedMetadata, Load: loadA, Duration: ptr(10)}))
	sched.RunPending()
	require.True(t, sess.Snapshot().Playing)

	sess.Choose("To B", playlist.ClipID("b"), metrics.SourceCTA)
	require.Equal(t, "b", sess.Clip().ID)

	// The element finished clip a before the switch reached the client.
	err = s.Dispatch(Report{Type: media.EventEnded, Load: loadA, CurrentTime: ptr(10)})
	require.ErrorIs(t, err, ErrStaleReport)
	assert.Equal(t, "b", sess.Clip().ID)
	assert.Equal(t, 1, sess.Index())

	require.NoError(t, s.Dispatch(Report{Type: media.EventEnded, Load: s.Generation()}))
	assert.Equal(t, "c", sess.Clip().ID)
}

func TestStreamer_AttachAndDestroyCommands(t *testing.T) {
	s, sub := newTestSurface(t)
	st := NewStreamer(s, true)
	a := media.NewAdapter(s, st)

	mode := a.Attach(playlist.Clip{ID: "g", Src: "https://x/gate.m3u8", Poster: "p.jpg"})
	require.Equal(t, media.ModeStream, mode)
	a.Release()

	cmds := drain(sub)
	ops := make([]string, 0, len(cmds))
	for _, c := range cmds {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{OpHLSAttach, OpPoster, OpLoad, OpHLSDestroy}, ops)
	assert.Equal(t, "https://x/gate.m3u8", cmds[0].Src)
	assert.Equal(t, cmds[0].Stream, cmds[3].Stream)
}

func TestStreamer_UnsupportedAssignsDirectly(t *testing.T) {
	s, sub := newTestSurface(t)
	a := media.NewAdapter(s, NewStreamer(s, false))

	a.Attach(playlist.Clip{ID: "g", Src: "https://x/gate.m3u8"})

	cmds := drain(sub)
	require.NotEmpty(t, cmds)
	assert.Equal(t, OpSource, cmds[0].Op)
}

func TestStream_DestroyTwice(t *testing.T) {
	s, _ := newTestSurface(t)
	h, err := NewStreamer(s, true).New()
	require.NoError(t, err)
	require.NoError(t, h.Destroy())
	require.ErrorIs(t, h.Destroy(), ErrStreamDestroyed)
	require.ErrorIs(t, h.LoadSource("x.m3u8"), ErrStreamDestroyed)
}
