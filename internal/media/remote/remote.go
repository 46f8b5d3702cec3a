// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package remote implements a media surface whose element lives in a client.
// Surface calls become commands published on a bus topic, and media events
// the client posts back are dispatched to the registered listeners.
package remote

import (
	"errors"
	"fmt"

	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/media"
	"github.com/rs/zerolog"
)

// Command ops sent to the client.
const (
	OpSource     = "source"
	OpPoster     = "poster"
	OpLoad       = "load"
	OpPlay       = "play"
	OpPause      = "pause"
	OpHLSAttach  = "hls.attach"
	OpHLSDestroy = "hls.destroy"
)

// Command is one instruction for the client-side element. Seq increases by
// one per command within a surface so clients can detect gaps.
type Command struct {
	Seq    uint64 `json:"seq"`
	Op     string `json:"op"`
	Src    string `json:"src,omitempty"`
	Stream int    `json:"stream,omitempty"`
}

// Report is a media event posted by the client. Load echoes the Seq of the
// load command for the source the element was playing when the event fired.
type Report struct {
	Type        media.EventKind `json:"type"`
	Load        uint64          `json:"load"`
	CurrentTime *float64        `json:"currentTime,omitempty"`
	Duration    *float64        `json:"duration,omitempty"`
}

var (
	ErrUnknownEvent    = errors.New("remote: unknown media event")
	ErrStaleReport     = errors.New("remote: media event for a replaced source")
	ErrStreamDestroyed = errors.New("remote: stream already destroyed")
)

// Publisher is the non-blocking side of the session bus.
type Publisher interface {
	TryPublish(topic string, msg any) int
}

type listener struct {
	id int
	fn func()
}

// Surface mirrors the client's element state from its reports. It is not
// safe for concurrent use; drive it from the session loop.
type Surface struct {
	pub       Publisher
	topic     string
	seq       uint64
	loadSeq   uint64
	paused    bool
	time      float64
	duration  float64
	nextID    int
	listeners map[media.EventKind][]listener
	logger    zerolog.Logger
}

// NewSurface returns a surface publishing commands to topic.
func NewSurface(pub Publisher, topic string) *Surface {
	return &Surface{
		pub:       pub,
		topic:     topic,
		paused:    true,
		listeners: make(map[media.EventKind][]listener),
		logger:    xglog.WithComponent("media.remote").With().Str("topic", topic).Logger(),
	}
}

func (s *Surface) send(c Command) {
	s.seq++
	c.Seq = s.seq
	if s.pub.TryPublish(s.topic, c) == 0 {
		s.logger.Debug().
			Str(xglog.FieldEvent, "media.command_unobserved").
			Str("op", c.Op).
			Msg("no client received command")
	}
}

func (s *Surface) SetSource(locator string) { s.send(Command{Op: OpSource, Src: locator}) }
func (s *Surface) SetPoster(locator string) { s.send(Command{Op: OpPoster, Src: locator}) }

func (s *Surface) Load() {
	s.time, s.duration, s.paused = 0, 0, true
	s.send(Command{Op: OpLoad})
	s.loadSeq = s.seq
}

// Generation returns the Seq of the last load command, or 0 before the
// first load.
func (s *Surface) Generation() uint64 { return s.loadSeq }

// Play always succeeds locally; a refusal arrives later as a playrejected
// report.
func (s *Surface) Play() error {
	s.paused = false
	s.send(Command{Op: OpPlay})
	return nil
}

func (s *Surface) Pause() {
	s.paused = true
	s.send(Command{Op: OpPause})
}

func (s *Surface) Paused() bool         { return s.paused }
func (s *Surface) CurrentTime() float64 { return s.time }
func (s *Surface) Duration() float64    { return s.duration }

func (s *Surface) Listen(kind media.EventKind, fn func()) func() {
	id := s.nextID
	s.nextID++
	s.listeners[kind] = append(s.listeners[kind], listener{id: id, fn: fn})
	return func() {
		ls := s.listeners[kind]
		for i, l := range ls {
			if l.id == id {
				s.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of registered listeners across kinds.
func (s *Surface) ListenerCount() int {
	n := 0
	for _, ls := range s.listeners {
		n += len(ls)
	}
	return n
}

// Dispatch applies a client report to the mirrored state and invokes the
// listeners for its type in registration order. Reports for any load other
// than the current one are dropped.
func (s *Surface) Dispatch(r Report) error {
	if !r.Type.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, r.Type)
	}
	if r.Load != s.loadSeq {
		s.logger.Debug().
			Str(xglog.FieldEvent, "media.report_stale").
			Str("type", string(r.Type)).
			Uint64("load", r.Load).
			Uint64("current", s.loadSeq).
			Msg("dropping media event for a replaced source")
		return fmt.Errorf("%w: load %d, current %d", ErrStaleReport, r.Load, s.loadSeq)
	}
	if r.CurrentTime != nil && *r.CurrentTime >= 0 {
		s.time = *r.CurrentTime
	}
	if r.Duration != nil && *r.Duration >= 0 {
		s.duration = *r.Duration
	}
	switch r.Type {
	case media.EventEnded, media.EventPlayRejected:
		s.paused = true
	}

	ls := make([]listener, len(s.listeners[r.Type]))
	copy(ls, s.listeners[r.Type])
	for _, l := range ls {
		l.fn()
	}
	return nil
}

// Streamer hands out client-side adaptive-streaming handles. Support is
// declared by the client.
type Streamer struct {
	surface   *Surface
	supported bool
	next      int
}

// NewStreamer returns a streamer driving surface.
func NewStreamer(surface *Surface, supported bool) *Streamer {
	return &Streamer{surface: surface, supported: supported}
}

func (st *Streamer) Supported() bool { return st.supported }

func (st *Streamer) New() (media.Stream, error) {
	st.next++
	return &stream{id: st.next, surface: st.surface}, nil
}

type stream struct {
	id        int
	surface   *Surface
	manifest  string
	destroyed bool
}

func (h *stream) LoadSource(manifest string) error {
	if h.destroyed {
		return ErrStreamDestroyed
	}
	h.manifest = manifest
	return nil
}

func (h *stream) Attach(s media.Surface) error {
	if h.destroyed {
		return ErrStreamDestroyed
	}
	if s != media.Surface(h.surface) {
		return errors.New("remote: stream attached to a foreign surface")
	}
	h.surface.send(Command{Op: OpHLSAttach, Src: h.manifest, Stream: h.id})
	return nil
}

func (h *stream) Destroy() error {
	if h.destroyed {
		return ErrStreamDestroyed
	}
	h.destroyed = true
	h.surface.send(Command{Op: OpHLSDestroy, Stream: h.id})
	return nil
}
