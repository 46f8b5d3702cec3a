// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the session registry over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/ManuGH/branchplay/internal/api/middleware"
	"github.com/ManuGH/branchplay/internal/health"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/ManuGH/branchplay/internal/sessions"
	"github.com/go-chi/chi/v5"
)

const defaultKeepAlive = 15 * time.Second

// PlaylistSource yields the playlist currently served.
type PlaylistSource interface {
	Get() *playlist.Playlist
}

// Deps wires the server to the rest of the daemon.
type Deps struct {
	Registry  *sessions.Registry
	Playlists PlaylistSource
	Health    *health.Manager
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
	Stack   middleware.StackConfig
	// SessionRateLimit caps POST /api/v1/sessions per client IP and minute.
	SessionRateLimit int
	// KeepAlive is the interval of comment frames on event streams.
	KeepAlive time.Duration
	// MediaBaseURL prefixes relative locators in the M3U export.
	MediaBaseURL string
}

// Server holds the HTTP routes.
type Server struct {
	deps   Deps
	router chi.Router
}

// New builds the router. Requests under /api/v1 are validated against the
// embedded OpenAPI document.
func New(deps Deps) *Server {
	if deps.KeepAlive <= 0 {
		deps.KeepAlive = defaultKeepAlive
	}
	s := &Server{deps: deps}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(s.deps.Stack)

	if s.deps.Health != nil {
		r.Get("/healthz", s.deps.Health.ServeHealth)
		r.Get("/readyz", s.deps.Health.ServeReady)
	}
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(validateRequests(mustOpenAPIRouter()))
		r.Get("/openapi.json", s.handleGetOpenAPI)
		r.Get("/playlist", s.handleGetPlaylist)
		r.Get("/playlist.m3u", s.handleGetPlaylistM3U)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.With(middleware.SessionCreateLimit(s.deps.SessionRateLimit)).Post("/", s.handleCreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/actions", s.handleAction)
				r.Post("/media", s.handleMedia)
				r.Get("/events", s.handleEvents)
			})
		})
	})
	return r
}
