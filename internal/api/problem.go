// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/branchplay/internal/api/middleware"
	"github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/loop"
	"github.com/ManuGH/branchplay/internal/media/remote"
	"github.com/ManuGH/branchplay/internal/player"
	"github.com/ManuGH/branchplay/internal/sessions"
)

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// problemSpec is the static part of a problem.
type problemSpec struct {
	status int
	code   string
}

var (
	errInvalidBody = errors.New("invalid request body")

	problemTable = []struct {
		err  error
		spec problemSpec
	}{
		{sessions.ErrNotFound, problemSpec{http.StatusNotFound, "SESSION_NOT_FOUND"}},
		{loop.ErrClosed, problemSpec{http.StatusNotFound, "SESSION_NOT_FOUND"}},
		{sessions.ErrLimit, problemSpec{http.StatusServiceUnavailable, "SESSION_LIMIT"}},
		{sessions.ErrNoPlaylist, problemSpec{http.StatusServiceUnavailable, "NO_PLAYLIST"}},
		{errInvalidBody, problemSpec{http.StatusBadRequest, "INVALID_BODY"}},
		{errInvalidParameter, problemSpec{http.StatusBadRequest, "INVALID_PARAMETER"}},
		{player.ErrUnknownAction, problemSpec{http.StatusBadRequest, "UNKNOWN_ACTION"}},
		{player.ErrInvalidAction, problemSpec{http.StatusBadRequest, "INVALID_ACTION"}},
		{remote.ErrUnknownEvent, problemSpec{http.StatusBadRequest, "UNKNOWN_MEDIA_EVENT"}},
		{remote.ErrStaleReport, problemSpec{http.StatusConflict, "STALE_MEDIA_EVENT"}},
		{player.ErrNoChoices, problemSpec{http.StatusConflict, "NO_CHOICES"}},
		{player.ErrNoSuchChoice, problemSpec{http.StatusConflict, "NO_SUCH_CHOICE"}},
		{player.ErrNoSuchHotspot, problemSpec{http.StatusConflict, "NO_SUCH_HOTSPOT"}},
		{player.ErrNotInteractive, problemSpec{http.StatusConflict, "NOT_INTERACTIVE"}},
		{context.DeadlineExceeded, problemSpec{http.StatusServiceUnavailable, "TIMEOUT"}},
	}
)

func classify(err error) problemSpec {
	for _, row := range problemTable {
		if errors.Is(err, row.err) {
			return row.spec
		}
	}
	return problemSpec{http.StatusInternalServerError, "INTERNAL"}
}

// writeProblem maps err onto a problem response.
func writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	spec := classify(err)
	p := Problem{
		Type:      "about:blank",
		Title:     http.StatusText(spec.status),
		Status:    spec.status,
		Code:      spec.code,
		Instance:  r.URL.EscapedPath(),
		RequestID: log.RequestIDFromContext(r.Context()),
	}
	if spec.status < http.StatusInternalServerError {
		p.Detail = err.Error()
	} else {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).
			Str(log.FieldEvent, "api.request_failed").
			Str("code", spec.code).
			Msg("request failed")
	}

	if p.RequestID != "" {
		w.Header().Set(middleware.HeaderRequestID, p.RequestID)
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(spec.status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.L().Error().Err(err).Str("code", spec.code).Msg("failed to encode problem response")
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
