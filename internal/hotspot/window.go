// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package hotspot decides which time-windowed regions are live at a given
// playback position.
package hotspot

import "github.com/ManuGH/branchplay/internal/playlist"

// InWindow reports whether elapsed lies inside w. Both bounds are inclusive
// and a nil bound is open on that side.
func InWindow(w playlist.Window, elapsed float64) bool {
	if w.Start != nil && elapsed < *w.Start {
		return false
	}
	if w.End != nil && elapsed > *w.End {
		return false
	}
	return true
}
