// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package playlist holds the clip graph a player session navigates.
package playlist

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyPlaylist = errors.New("playlist has no clips")
	ErrMissingClipID = errors.New("clip id is empty")
	ErrDuplicateClip = errors.New("duplicate clip id")
	ErrMissingSource = errors.New("clip source is empty")
)

// ManifestSuffix marks adaptive streaming locators.
const ManifestSuffix = ".m3u8"

// CTA is a labeled choice offered when a clip ends.
type CTA struct {
	Label string `json:"label" yaml:"label"`
	GoTo  Target `json:"goTo" yaml:"goTo"`
}

// Rect is a hotspot region in percent of the video frame.
type Rect struct {
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Keyframe positions a region at elapsed time T (seconds).
type Keyframe struct {
	T    float64 `json:"t" yaml:"t"`
	Rect `yaml:",inline"`
}

// Window bounds a hotspot's activity in elapsed seconds. Nil bounds are open.
type Window struct {
	Start *float64 `json:"start,omitempty" yaml:"start,omitempty"`
	End   *float64 `json:"end,omitempty" yaml:"end,omitempty"`
}

// Shape tells how a hotspot region is defined.
type Shape string

const (
	ShapeNone Shape = "none"
	ShapeRect Shape = "rect"
	ShapePath Shape = "path"
)

// Hotspot is a time-windowed interactive region over the video.
type Hotspot struct {
	Label string `json:"label" yaml:"label"`
	GoTo  Target `json:"goTo" yaml:"goTo"`
	Window `yaml:",inline"`
	Rect  *Rect      `json:"rect,omitempty" yaml:"rect,omitempty"`
	Path  []Keyframe `json:"path,omitempty" yaml:"path,omitempty"`
}

// Shape returns the region kind. A static rect wins when both are present.
func (h Hotspot) Shape() Shape {
	switch {
	case h.Rect != nil:
		return ShapeRect
	case len(h.Path) > 0:
		return ShapePath
	default:
		return ShapeNone
	}
}

// Clip is one playable unit of the experience.
type Clip struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Src      string    `json:"src" yaml:"src"`
	Poster   string    `json:"poster,omitempty" yaml:"poster,omitempty"`
	Facts    []string  `json:"facts,omitempty" yaml:"facts,omitempty"`
	Hotspots []Hotspot `json:"hotspots,omitempty" yaml:"hotspots,omitempty"`
	Modal    *Modal    `json:"modal,omitempty" yaml:"modal,omitempty"`
	CTAs     []CTA     `json:"ctas,omitempty" yaml:"ctas,omitempty"`
}

// IsAdaptive reports whether the clip source is a streaming manifest. Query
// strings and fragments are ignored when the locator parses as a URL.
func (c Clip) IsAdaptive() bool {
	return IsManifest(c.Src)
}

// IsManifest applies the manifest suffix convention to a locator.
func IsManifest(locator string) bool {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.HasSuffix(strings.ToLower(p), ManifestSuffix)
}

// Playlist is an immutable, validated sequence of clips.
type Playlist struct {
	title string
	clips []Clip
	byID  map[string]int
}

// New validates clips and builds a playlist. The slice is copied.
func New(title string, clips []Clip) (*Playlist, error) {
	if len(clips) == 0 {
		return nil, ErrEmptyPlaylist
	}
	p := &Playlist{
		title: title,
		clips: make([]Clip, len(clips)),
		byID:  make(map[string]int, len(clips)),
	}
	copy(p.clips, clips)
	for i, c := range p.clips {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("clip %d: %w", i, ErrMissingClipID)
		}
		if strings.TrimSpace(c.Src) == "" {
			return nil, fmt.Errorf("clip %q: %w", c.ID, ErrMissingSource)
		}
		if prev, dup := p.byID[c.ID]; dup {
			return nil, fmt.Errorf("clip %q at %d and %d: %w", c.ID, prev, i, ErrDuplicateClip)
		}
		p.byID[c.ID] = i
	}
	return p, nil
}

// Title is the optional document title.
func (p *Playlist) Title() string { return p.title }

// Len returns the number of clips.
func (p *Playlist) Len() int { return len(p.clips) }

// Clip returns the clip at i.
func (p *Playlist) Clip(i int) (Clip, bool) {
	if i < 0 || i >= len(p.clips) {
		return Clip{}, false
	}
	return p.clips[i], true
}

// InBounds reports whether i is a valid clip index.
func (p *Playlist) InBounds(i int) bool {
	return i >= 0 && i < len(p.clips)
}

// IndexOf returns the index of the first clip with the given id.
func (p *Playlist) IndexOf(id string) (int, bool) {
	i, ok := p.byID[id]
	return i, ok
}

// Clips returns a copy of the clip list.
func (p *Playlist) Clips() []Clip {
	out := make([]Clip, len(p.clips))
	copy(out, p.clips)
	return out
}
