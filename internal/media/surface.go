// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package media attaches clip sources to a playback surface.
package media

import "errors"

// EventKind names a media event raised by a Surface.
type EventKind string

const (
	EventLoadedMetadata EventKind = "loadedmetadata"
	EventTimeUpdate     EventKind = "timeupdate"
	EventEnded          EventKind = "ended"
	EventPlayRejected   EventKind = "playrejected"
)

// Known reports whether k is one of the media event kinds.
func (k EventKind) Known() bool {
	switch k {
	case EventLoadedMetadata, EventTimeUpdate, EventEnded, EventPlayRejected:
		return true
	}
	return false
}

// ErrPlayRejected is returned by Surface.Play when the platform refuses to
// start playback, typically an autoplay policy.
var ErrPlayRejected = errors.New("media: play rejected")

// Surface is the single video element a session drives. Calls happen on the
// session loop; listeners are invoked on the same loop.
type Surface interface {
	SetSource(locator string)
	SetPoster(locator string)
	Load()
	Play() error
	Pause()
	Paused() bool
	CurrentTime() float64
	Duration() float64
	// Listen registers fn for kind and returns a function that removes it.
	Listen(kind EventKind, fn func()) (unlisten func())
}

// Stream is an adaptive-streaming handle bound to one surface.
type Stream interface {
	LoadSource(manifest string) error
	Attach(s Surface) error
	Destroy() error
}

// Streamer creates adaptive-streaming handles when the platform supports
// them.
type Streamer interface {
	Supported() bool
	New() (Stream, error)
}
