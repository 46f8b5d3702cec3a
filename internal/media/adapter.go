// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package media

import (
	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/rs/zerolog"
)

// Mode records how a clip source was attached.
type Mode string

const (
	ModeDirect Mode = metrics.ModeDirect
	ModeStream Mode = metrics.ModeStream
)

// Adapter attaches clips to a surface, either by direct source assignment or
// through a Stream. It holds at most one Stream at a time.
type Adapter struct {
	surface  Surface
	streamer Streamer
	stream   Stream
	logger   zerolog.Logger
}

// NewAdapter returns an adapter for surface. streamer may be nil when the
// platform has no adaptive-streaming support.
func NewAdapter(surface Surface, streamer Streamer) *Adapter {
	return &Adapter{
		surface:  surface,
		streamer: streamer,
		logger:   xglog.WithComponent("media"),
	}
}

// Surface returns the surface the adapter drives.
func (a *Adapter) Surface() Surface { return a.surface }

// Streaming reports whether a stream handle is currently held.
func (a *Adapter) Streaming() bool { return a.stream != nil }

// Attach releases any previous stream, assigns the clip's source, sets the
// poster and forces a reload. Event wiring is the caller's job and must
// happen after Attach returns.
func (a *Adapter) Attach(clip playlist.Clip) Mode {
	a.Release()

	mode := ModeDirect
	if clip.IsAdaptive() && a.streamer != nil && a.streamer.Supported() {
		if err := a.attachStream(clip.Src); err != nil {
			a.logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "media.stream_attach_failed").
				Str(xglog.FieldClipID, clip.ID).
				Msg("adaptive stream setup failed, assigning source directly")
			a.surface.SetSource(clip.Src)
		} else {
			mode = ModeStream
		}
	} else {
		a.surface.SetSource(clip.Src)
	}

	a.surface.SetPoster(clip.Poster)
	a.surface.Load()
	metrics.IncClipActivation(string(mode))

	a.logger.Debug().
		Str(xglog.FieldEvent, "media.attached").
		Str(xglog.FieldClipID, clip.ID).
		Str(xglog.FieldSource, clip.Src).
		Str("mode", string(mode)).
		Msg("clip source attached")
	return mode
}

func (a *Adapter) attachStream(manifest string) error {
	s, err := a.streamer.New()
	if err != nil {
		return err
	}
	if err := s.LoadSource(manifest); err != nil {
		a.destroy(s)
		return err
	}
	if err := s.Attach(a.surface); err != nil {
		a.destroy(s)
		return err
	}
	a.stream = s
	return nil
}

// Release destroys the held stream, if any. Teardown failures are logged and
// counted but never returned.
func (a *Adapter) Release() {
	if a.stream == nil {
		return
	}
	s := a.stream
	a.stream = nil
	a.destroy(s)
}

func (a *Adapter) destroy(s Stream) {
	if err := s.Destroy(); err != nil {
		metrics.IncStreamTeardownFailure()
		a.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "media.stream_destroy_failed").
			Msg("stream teardown failed")
	}
}
