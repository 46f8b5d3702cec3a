// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"context"
	"fmt"
	"sync"
	"time"

	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 500 * time.Millisecond

// Holder keeps the current playlist and reloads it when the file changes.
// Sessions take a snapshot with Get at creation and keep it for their whole
// lifetime; reloads only affect sessions created afterwards.
type Holder struct {
	mu      sync.RWMutex
	current *Playlist
	path    string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	listenMu  sync.RWMutex
	listeners []chan<- *Playlist
}

// NewHolder creates a holder with an initial playlist loaded from path.
func NewHolder(initial *Playlist, path string) *Holder {
	return &Holder{
		current: initial,
		path:    path,
		logger:  xglog.WithComponent("playlist"),
	}
}

// Get returns the current playlist.
func (h *Holder) Get() *Playlist {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Path returns the watched file path.
func (h *Holder) Path() string {
	return h.path
}

// Reload re-reads the playlist file. On error the previous playlist stays.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str(xglog.FieldEvent, "playlist.reload_start").Str(xglog.FieldPlaylistPath, h.path).Msg("reloading playlist")

	next, err := LoadFile(h.path)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "playlist.reload_failed").
			Msg("failed to load playlist; keeping previous version")
		return fmt.Errorf("load playlist: %w", err)
	}
	for _, issue := range Lint(next) {
		h.logger.Warn().
			Str(xglog.FieldEvent, "playlist.lint").
			Str(xglog.FieldClipID, issue.ClipID).
			Str("where", issue.Where).
			Str("severity", string(issue.Severity)).
			Msg(issue.Message)
	}

	h.mu.Lock()
	old := h.current
	h.current = next
	h.mu.Unlock()

	h.notifyListeners(next)

	oldLen := 0
	if old != nil {
		oldLen = old.Len()
	}
	h.logger.Info().
		Str(xglog.FieldEvent, "playlist.reload_success").
		Int("old_clips", oldLen).
		Int("new_clips", next.Len()).
		Msg("playlist reloaded")
	return nil
}

// StartWatcher watches the playlist file until ctx is done. An empty path
// disables watching.
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.path == "" {
		h.logger.Info().Str(xglog.FieldEvent, "playlist.watcher_disabled").Msg("playlist watcher disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(h.path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch playlist file: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str(xglog.FieldEvent, "playlist.watcher_started").
		Str(xglog.FieldPlaylistPath, h.path).
		Msg("watching playlist file for changes")

	go h.watchLoop(ctx, watcher)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xglog.FieldEvent, "playlist.watcher_stopped").Msg("playlist watcher stopped")
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			changed := ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
			// Editors that replace the file drop the watch; re-arm it.
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				_ = watcher.Remove(h.path)
				changed = watcher.Add(h.path) == nil
			}
			if !changed {
				continue
			}
			h.logger.Debug().
				Str(xglog.FieldEvent, "playlist.file_changed").
				Str("op", ev.Op.String()).
				Msg("playlist file changed")
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				_ = h.Reload(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str(xglog.FieldEvent, "playlist.watcher_error").Msg("playlist watcher error")
		}
	}
}

// RegisterListener registers a channel that receives each reloaded playlist.
// Sends never block; a full channel misses the notification.
func (h *Holder) RegisterListener(ch chan<- *Playlist) {
	h.listenMu.Lock()
	defer h.listenMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notifyListeners(p *Playlist) {
	h.listenMu.RLock()
	defer h.listenMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- p:
		default:
			h.logger.Warn().Str(xglog.FieldEvent, "playlist.listener_skip").Msg("skipped notifying listener (channel full)")
		}
	}
}
