// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package navigation

import "github.com/ManuGH/branchplay/internal/playlist"

// DefaultLabel is the label of the implicit choice of clips without CTAs.
const DefaultLabel = "Continue"

// EndChoices returns the choices offered when clip ends. A clip without CTAs
// offers a single Continue choice that auto-advances; the fallback is never
// written back into the playlist.
func EndChoices(clip playlist.Clip) []playlist.CTA {
	if len(clip.CTAs) == 0 {
		return []playlist.CTA{{Label: DefaultLabel, GoTo: playlist.AutoNext()}}
	}
	out := make([]playlist.CTA, len(clip.CTAs))
	copy(out, clip.CTAs)
	return out
}
