// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldClipID    = "clip_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Playback fields
	FieldClipIndex = "clip_index"
	FieldPosition  = "position"
	FieldLabel     = "label"
	FieldTarget    = "target"
	FieldSource    = "source"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path / URL fields
	FieldPath         = "path"
	FieldPlaylistPath = "playlist_path"
)
