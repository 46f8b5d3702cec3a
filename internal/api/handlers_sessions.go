// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuGH/branchplay/internal/media/remote"
	"github.com/ManuGH/branchplay/internal/player"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/ManuGH/branchplay/internal/sessions"
	"github.com/oapi-codegen/runtime"
)

const maxBodyBytes = 64 << 10

// SessionResponse is returned on creation and lookup. Media reports must
// echo Load.
type SessionResponse struct {
	ID     string      `json:"id"`
	Events string      `json:"events"`
	Load   uint64      `json:"load"`
	View   player.View `json:"view"`
}

// SessionList is returned by GET /api/v1/sessions.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

// decodeBody decodes an optional JSON body into v. Unknown fields are rejected.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

func eventsPath(id string) string {
	return "/api/v1/sessions/" + id + "/events"
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	p := s.deps.Playlists.Get()
	if p == nil {
		writeProblem(w, r, sessions.ErrNoPlaylist)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		playlist.Document
		Issues []playlist.Issue `json:"issues,omitempty"`
	}{p.Document(), playlist.Lint(p)})
}

// handleGetPlaylistM3U exports the clips as an extended M3U list. The base
// query parameter overrides the configured media base URL.
func (s *Server) handleGetPlaylistM3U(w http.ResponseWriter, r *http.Request) {
	p := s.deps.Playlists.Get()
	if p == nil {
		writeProblem(w, r, sessions.ErrNoPlaylist)
		return
	}
	var override *string
	if err := runtime.BindQueryParameter("form", true, false, "base", r.URL.Query(), &override); err != nil {
		writeProblem(w, r, fmt.Errorf("%w: base: %v", errInvalidParameter, err))
		return
	}
	base := s.deps.MediaBaseURL
	if override != nil && *override != "" {
		base = *override
	}
	var buf bytes.Buffer
	if err := playlist.WriteM3U(&buf, p, base); err != nil {
		writeProblem(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// lookup resolves the session named by the {id} path parameter.
func (s *Server) lookup(r *http.Request) (*sessions.Handle, error) {
	id, err := sessionID(r)
	if err != nil {
		return nil, err
	}
	return s.deps.Registry.Get(id)
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SessionList{Sessions: s.deps.Registry.IDs()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessions.CreateRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeProblem(w, r, err)
		return
	}

	h, view, err := s.deps.Registry.Create(r.Context(), req)
	if err != nil {
		writeProblem(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/sessions/"+h.ID())
	writeJSON(w, http.StatusCreated, SessionResponse{ID: h.ID(), Events: eventsPath(h.ID()), Load: h.Load(), View: view})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r)
	if err != nil {
		writeProblem(w, r, err)
		return
	}
	view, err := h.View(r.Context())
	if err != nil {
		writeProblem(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: h.ID(), Events: eventsPath(h.ID()), Load: h.Load(), View: view})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		writeProblem(w, r, err)
		return
	}
	if err := s.deps.Registry.Delete(id); err != nil {
		writeProblem(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r)
	if err != nil {
		writeProblem(w, r, err)
		return
	}
	var a player.Action
	if err := decodeBody(r, &a, false); err != nil {
		writeProblem(w, r, err)
		return
	}
	view, err := h.Apply(r.Context(), a)
	if err != nil {
		writeProblem(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	h, err := s.lookup(r)
	if err != nil {
		writeProblem(w, r, err)
		return
	}
	var report remote.Report
	if err := decodeBody(r, &report, false); err != nil {
		writeProblem(w, r, err)
		return
	}
	if err := h.Report(r.Context(), report); err != nil {
		writeProblem(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
