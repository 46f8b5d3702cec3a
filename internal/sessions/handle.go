// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sessions

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ManuGH/branchplay/internal/bus"
	"github.com/ManuGH/branchplay/internal/events"
	"github.com/ManuGH/branchplay/internal/loop"
	"github.com/ManuGH/branchplay/internal/media/remote"
	"github.com/ManuGH/branchplay/internal/player"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/ManuGH/branchplay/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ViewUpdate is published on the session topic after the view changed.
// Load is the generation media reports must echo.
type ViewUpdate struct {
	View player.View `json:"view"`
	Load uint64      `json:"load"`
}

type handleConfig struct {
	id       string
	playlist *playlist.Playlist
	bus      *bus.MemoryBus
	sink     events.Sink
	options  player.Options
	hls      bool
	now      func() time.Time
}

// Handle is one hosted session. Its methods may be called from any
// goroutine; they run on the session loop.
type Handle struct {
	id      string
	topic   string
	created time.Time
	now     func() time.Time
	bus     *bus.MemoryBus
	loop    *loop.Serial

	// loop-owned
	player  *player.Player
	surface *remote.Surface
	dirty   bool

	lastSeen atomic.Int64
	load     atomic.Uint64
}

func startHandle(ctx context.Context, cfg handleConfig) (*Handle, player.View, error) {
	h := &Handle{
		id:      cfg.id,
		topic:   Topic(cfg.id),
		created: cfg.now(),
		now:     cfg.now,
		bus:     cfg.bus,
		loop:    loop.NewSerial(),
	}
	h.touch()

	var (
		view player.View
		err  error
	)
	doErr := h.loop.Do(ctx, func() {
		h.surface = remote.NewSurface(cfg.bus, h.topic)
		h.player, err = player.New(player.Config{
			ID:        cfg.id,
			Playlist:  cfg.playlist,
			Surface:   h.surface,
			Streamer:  remote.NewStreamer(h.surface, cfg.hls),
			Scheduler: h.loop,
			Sink:      events.Multi{cfg.sink, events.BusSink{Bus: cfg.bus, Topic: h.topic}},
			Options:   cfg.options,
			Changed:   h.markDirty,
			Now:       cfg.now,
		})
		if err == nil {
			view = h.player.View()
			h.syncLoad()
		}
	})
	if doErr != nil {
		err = doErr
	}
	if err != nil {
		h.loop.Close()
		return nil, player.View{}, fmt.Errorf("start session: %w", err)
	}
	return h, view, nil
}

// markDirty coalesces view publication to one update per loop tick.
func (h *Handle) markDirty() {
	if h.dirty {
		return
	}
	h.dirty = true
	h.loop.Defer(func() {
		h.dirty = false
		if h.player != nil {
			h.syncLoad()
			h.bus.TryPublish(h.topic, ViewUpdate{View: h.player.View(), Load: h.surface.Generation()})
		}
	})
}

// syncLoad mirrors the surface generation for readers off the loop.
func (h *Handle) syncLoad() { h.load.Store(h.surface.Generation()) }

// Load returns the sequence number of the current clip's load command.
// Media reports carrying any other value are rejected as stale.
func (h *Handle) Load() uint64 { return h.load.Load() }

func (h *Handle) ID() string         { return h.id }
func (h *Handle) Topic() string      { return h.topic }
func (h *Handle) Created() time.Time { return h.created }

// LastSeen is the time of the last client interaction.
func (h *Handle) LastSeen() time.Time { return time.Unix(0, h.lastSeen.Load()) }

func (h *Handle) touch() { h.lastSeen.Store(h.now().UnixNano()) }

// View returns the current view.
func (h *Handle) View(ctx context.Context) (player.View, error) {
	h.touch()
	var v player.View
	err := h.loop.Do(ctx, func() {
		v = h.player.View()
		h.syncLoad()
	})
	return v, err
}

// Apply performs a viewer action and returns the resulting view.
func (h *Handle) Apply(ctx context.Context, a player.Action) (player.View, error) {
	h.touch()
	ctx, span := telemetry.Tracer().Start(ctx, "session.apply", trace.WithAttributes(
		attribute.String(telemetry.SessionIDKey, h.id),
		attribute.String(telemetry.ActionTypeKey, string(a.Type)),
	))
	defer span.End()

	var (
		v      player.View
		actErr error
	)
	err := h.loop.Do(ctx, func() {
		actErr = h.player.Apply(a)
		v = h.player.View()
		h.syncLoad()
	})
	if err != nil {
		telemetry.RecordError(span, err, "loop")
		return player.View{}, err
	}
	span.SetAttributes(telemetry.SessionAttributes("", v.Clip.ID, v.Clip.Index)...)
	span.SetAttributes(attribute.String(telemetry.SessionStateKey, string(v.Session.State)))
	telemetry.RecordError(span, actErr, "action")
	return v, actErr
}

// Report dispatches a media event from the client's element.
func (h *Handle) Report(ctx context.Context, r remote.Report) error {
	h.touch()
	ctx, span := telemetry.Tracer().Start(ctx, "session.report", trace.WithAttributes(
		attribute.String(telemetry.SessionIDKey, h.id),
		attribute.String(telemetry.MediaEventKey, string(r.Type)),
	))
	defer span.End()

	var dispErr error
	if err := h.loop.Do(ctx, func() {
		dispErr = h.surface.Dispatch(r)
		h.syncLoad()
	}); err != nil {
		telemetry.RecordError(span, err, "loop")
		return err
	}
	telemetry.RecordError(span, dispErr, "media_event")
	return dispErr
}

// Subscribe follows the session topic. Subscriptions end when the session
// is deleted.
func (h *Handle) Subscribe(ctx context.Context) (bus.Subscriber, error) {
	h.touch()
	return h.bus.Subscribe(ctx, h.topic)
}

func (h *Handle) close() {
	_ = h.loop.Do(context.Background(), func() { h.player.Close() })
	h.loop.Close()
	h.bus.CloseTopic(h.topic)
}
