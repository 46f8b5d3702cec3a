// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package hotspot

import "github.com/ManuGH/branchplay/internal/playlist"

// Active is a hotspot that is live at the evaluated position. Index is the
// hotspot's position in the clip's list; only static rectangles are
// Interactive.
type Active struct {
	Index       int             `json:"index"`
	Label       string          `json:"label"`
	Shape       playlist.Shape  `json:"shape"`
	Rect        playlist.Rect   `json:"rect"`
	Target      playlist.Target `json:"goTo"`
	Interactive bool            `json:"interactive"`
}

// Evaluate returns the hotspots live at elapsed, in clip order. It keeps no
// state between calls, so a skipped tick cannot leave a region stuck on.
func Evaluate(hotspots []playlist.Hotspot, elapsed float64) []Active {
	var out []Active
	for i, h := range hotspots {
		if !InWindow(h.Window, elapsed) {
			continue
		}
		a := Active{Index: i, Label: h.Label, Shape: h.Shape(), Target: h.GoTo}
		switch a.Shape {
		case playlist.ShapeRect:
			a.Rect = *h.Rect
			a.Interactive = true
		case playlist.ShapePath:
			a.Rect, _ = RectAt(h.Path, elapsed)
		}
		out = append(out, a)
	}
	return out
}

// Find returns the live hotspot with the given clip-local index.
func Find(active []Active, index int) (Active, bool) {
	for _, a := range active {
		if a.Index == index {
			return a, true
		}
	}
	return Active{}, false
}

// RectAt places a keyframed path at time t by holding the latest keyframe at
// or before t (the first keyframe before the path starts). Keyframes must be
// in ascending T order. Tweening between keyframes is not defined yet.
func RectAt(path []playlist.Keyframe, t float64) (playlist.Rect, bool) {
	if len(path) == 0 {
		return playlist.Rect{}, false
	}
	r := path[0].Rect
	for _, k := range path {
		if k.T > t {
			break
		}
		r = k.Rect
	}
	return r, true
}
