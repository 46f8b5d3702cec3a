// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ManuGH/branchplay/internal/bus"
	"github.com/ManuGH/branchplay/internal/events"
	"github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/media/remote"
	"github.com/ManuGH/branchplay/internal/sessions"
)

// Server-sent event names.
const (
	EventCommand   = "command"
	EventLifecycle = "lifecycle"
	EventView      = "view"
)

// eventName maps a bus message to its stream event name.
func eventName(msg bus.Message) (string, bool) {
	switch msg.(type) {
	case remote.Command:
		return EventCommand, true
	case events.Event:
		return EventLifecycle, true
	case sessions.ViewUpdate:
		return EventView, true
	default:
		return "", false
	}
}

func writeEvent(w io.Writer, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

// handleEvents streams the session topic. The first event is the current
// view; the stream ends when the session is deleted or expires.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r)
	if err != nil {
		writeProblem(w, r, err)
		return
	}

	ctx := r.Context()
	sub, err := h.Subscribe(ctx)
	if err != nil {
		writeProblem(w, r, err)
		return
	}
	defer func() { _ = sub.Close() }()

	view, err := h.View(ctx)
	if err != nil {
		writeProblem(w, r, err)
		return
	}

	logger := log.WithComponentFromContext(log.ContextWithSessionID(ctx, h.ID()), "api")
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	_, _ = io.WriteString(w, "retry: 2000\n\n")
	if err := writeEvent(w, EventView, sessions.ViewUpdate{View: view, Load: h.Load()}); err != nil {
		return
	}
	_ = rc.Flush()

	logger.Debug().Str(log.FieldEvent, "api.stream_open").Msg("event stream opened")
	defer func() {
		logger.Debug().Str(log.FieldEvent, "api.stream_closed").Msg("event stream closed")
	}()

	keepAlive := time.NewTicker(s.deps.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		case msg, ok := <-sub.C():
			if !ok {
				_, _ = io.WriteString(w, "event: end\ndata: {}\n\n")
				_ = rc.Flush()
				return
			}
			name, known := eventName(msg)
			if !known {
				continue
			}
			if err := writeEvent(w, name, msg); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}
