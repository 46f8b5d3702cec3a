// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package sessions hosts remote players for thin clients. Each session gets
// its own serial loop; the client's element is driven through a remote
// surface whose commands, lifecycle events and view updates are published
// on the session's bus topic.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ManuGH/branchplay/internal/bus"
	"github.com/ManuGH/branchplay/internal/events"
	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/ManuGH/branchplay/internal/player"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound   = errors.New("sessions: not found")
	ErrLimit      = errors.New("sessions: limit reached")
	ErrNoPlaylist = errors.New("sessions: no playlist loaded")
)

// PlaylistSource yields the playlist new sessions start with.
type PlaylistSource interface {
	Get() *playlist.Playlist
}

// Config configures the registry.
type Config struct {
	MaxSessions   int
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	Defaults      player.Options
	// Sink receives every session's lifecycle events in addition to the bus.
	Sink events.Sink
	Now  func() time.Time
}

// CreateRequest carries client capabilities and per-session overrides.
type CreateRequest struct {
	HLSSupported bool  `json:"hlsSupported"`
	AutoAdvance  *bool `json:"autoAdvance,omitempty"`
	ShowBar      *bool `json:"showBar,omitempty"`
}

// Registry owns the live sessions.
type Registry struct {
	cfg    Config
	src    PlaylistSource
	bus    *bus.MemoryBus
	logger zerolog.Logger

	mu    sync.RWMutex
	items map[string]*Handle
}

// New returns an empty registry.
func New(cfg Config, src PlaylistSource, b *bus.MemoryBus) *Registry {
	if cfg.Sink == nil {
		cfg.Sink = events.Discard
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Registry{
		cfg:    cfg,
		src:    src,
		bus:    b,
		logger: xglog.WithComponent("sessions"),
		items:  make(map[string]*Handle),
	}
}

// Topic returns the bus topic of session id.
func Topic(id string) string { return "session/" + id }

// Create starts a session on the current playlist.
func (r *Registry) Create(ctx context.Context, req CreateRequest) (*Handle, player.View, error) {
	pl := r.src.Get()
	if pl == nil {
		return nil, player.View{}, ErrNoPlaylist
	}

	r.mu.Lock()
	if r.cfg.MaxSessions > 0 && len(r.items) >= r.cfg.MaxSessions {
		r.mu.Unlock()
		return nil, player.View{}, fmt.Errorf("%w: %d", ErrLimit, r.cfg.MaxSessions)
	}
	id := uuid.NewString()
	// Reserve the slot so concurrent creates respect the limit.
	r.items[id] = nil
	r.mu.Unlock()

	opts := r.cfg.Defaults
	if req.AutoAdvance != nil {
		opts.AutoAdvance = *req.AutoAdvance
	}
	if req.ShowBar != nil {
		opts.ShowBar = *req.ShowBar
	}

	h, view, err := startHandle(ctx, handleConfig{
		id:       id,
		playlist: pl,
		bus:      r.bus,
		sink:     r.cfg.Sink,
		options:  opts,
		hls:      req.HLSSupported,
		now:      r.cfg.Now,
	})

	r.mu.Lock()
	if err != nil {
		delete(r.items, id)
	} else {
		r.items[id] = h
	}
	n := r.countLocked()
	r.mu.Unlock()
	metrics.SetActiveSessions(n)

	if err != nil {
		return nil, player.View{}, err
	}
	r.logger.Info().
		Str(xglog.FieldEvent, "sessions.created").
		Str(xglog.FieldSessionID, id).
		Bool("hls", req.HLSSupported).
		Int("active", n).
		Msg("session created")
	return h, view, nil
}

func (r *Registry) countLocked() int {
	n := 0
	for _, h := range r.items {
		if h != nil {
			n++
		}
	}
	return n
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Handle, error) {
	r.mu.RLock()
	h := r.items[id]
	r.mu.RUnlock()
	if h == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return h, nil
}

// IDs returns the ids of live sessions in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.items))
	for id, h := range r.items {
		if h != nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked()
}

// Delete stops and forgets session id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	h := r.items[id]
	if h == nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.items, id)
	n := r.countLocked()
	r.mu.Unlock()

	h.close()
	metrics.SetActiveSessions(n)
	r.logger.Info().
		Str(xglog.FieldEvent, "sessions.deleted").
		Str(xglog.FieldSessionID, id).
		Msg("session deleted")
	return nil
}

// SweepOnce removes sessions idle for longer than the idle timeout and
// returns how many were removed.
func (r *Registry) SweepOnce() int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	now := r.cfg.Now()

	var expired []string
	r.mu.RLock()
	for id, h := range r.items {
		if h != nil && now.Sub(h.LastSeen()) > r.cfg.IdleTimeout {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		if err := r.Delete(id); err == nil {
			removed++
			metrics.IncSessionsExpired()
		}
	}
	if removed > 0 {
		r.logger.Info().
			Str(xglog.FieldEvent, "sessions.swept").
			Int("removed", removed).
			Msg("idle sessions removed")
	}
	return removed
}

// Run sweeps on every interval tick until ctx is done, then closes every
// remaining session.
func (r *Registry) Run(ctx context.Context) error {
	defer r.CloseAll()
	if r.cfg.SweepInterval <= 0 || r.cfg.IdleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	r.logger.Info().
		Dur("interval", r.cfg.SweepInterval).
		Dur("idle_timeout", r.cfg.IdleTimeout).
		Msg("session sweeper started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.SweepOnce()
		}
	}
}

// CloseAll stops every session.
func (r *Registry) CloseAll() {
	for _, id := range r.IDs() {
		_ = r.Delete(id)
	}
}
