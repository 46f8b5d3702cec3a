// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package events

import (
	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/rs/zerolog"
)

// LogSink writes every event as a structured debug entry.
type LogSink struct {
	Logger zerolog.Logger
}

// NewLogSink returns a LogSink on the "events" component logger.
func NewLogSink() LogSink {
	return LogSink{Logger: xglog.WithComponent("events")}
}

func (s LogSink) Emit(e Event) {
	ev := s.Logger.Debug().
		Str(xglog.FieldEvent, "player."+string(e.Kind)).
		Str(xglog.FieldClipID, e.ClipID)
	if e.SessionID != "" {
		ev = ev.Str(xglog.FieldSessionID, e.SessionID)
	}
	switch e.Kind {
	case KindPlay, KindPause:
		ev = ev.Float64(xglog.FieldPosition, e.Position)
	case KindChoiceSelected:
		ev = ev.Str(xglog.FieldLabel, e.Label)
	}
	ev.Msg("lifecycle event")
}

// MetricsSink counts events by kind.
type MetricsSink struct{}

func (MetricsSink) Emit(e Event) {
	metrics.IncLifecycleEvent(string(e.Kind))
}

// Publisher is the non-blocking publish side of the in-memory bus.
type Publisher interface {
	TryPublish(topic string, msg any) int
}

// BusSink republishes events on a bus topic.
type BusSink struct {
	Bus   Publisher
	Topic string
}

func (s BusSink) Emit(e Event) {
	s.Bus.TryPublish(s.Topic, e)
}

// WithSession stamps the session id on every event before forwarding.
func WithSession(id string, next Sink) Sink {
	return SinkFunc(func(e Event) {
		e.SessionID = id
		next.Emit(e)
	})
}
