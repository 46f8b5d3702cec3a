// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import "fmt"

// Severity ranks lint findings.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityHazard  Severity = "hazard"
)

// Issue is an authoring problem that does not prevent playback. Broken
// targets degrade to no-ops at runtime; Lint surfaces them ahead of time.
type Issue struct {
	ClipID   string   `json:"clipId"`
	Where    string   `json:"where"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", i.ClipID, i.Severity, i.Where, i.Message)
}

// Lint reports dangling targets, out-of-range indices, unreadable targets,
// hotspots without a region, inverted windows, and index-based targets that
// silently drift when clips are reordered.
func Lint(p *Playlist) []Issue {
	var issues []Issue
	for _, c := range p.clips {
		for i, cta := range c.CTAs {
			issues = append(issues, lintTarget(p, c.ID, fmt.Sprintf("ctas[%d]", i), cta.GoTo)...)
		}
		for i, h := range c.Hotspots {
			where := fmt.Sprintf("hotspots[%d]", i)
			issues = append(issues, lintTarget(p, c.ID, where, h.GoTo)...)
			if h.Shape() == ShapeNone {
				issues = append(issues, Issue{ClipID: c.ID, Where: where, Severity: SeverityWarning, Message: "hotspot has neither rect nor path"})
			}
			if h.Start != nil && h.End != nil && *h.Start > *h.End {
				issues = append(issues, Issue{ClipID: c.ID, Where: where, Severity: SeverityWarning, Message: "window start is after end; hotspot never activates"})
			}
		}
	}
	return issues
}

func lintTarget(p *Playlist, clipID, where string, t Target) []Issue {
	switch t.Kind() {
	case TargetNone:
		return []Issue{{ClipID: clipID, Where: where, Severity: SeverityWarning, Message: "missing or unreadable goTo; choice does nothing"}}
	case TargetIndex:
		idx, _ := t.IndexValue()
		if !p.InBounds(idx) {
			return []Issue{{ClipID: clipID, Where: where, Severity: SeverityWarning, Message: fmt.Sprintf("index %d out of range; choice does nothing", idx)}}
		}
		return []Issue{{ClipID: clipID, Where: where, Severity: SeverityHazard, Message: fmt.Sprintf("index target %d drifts when clips are reordered; prefer a clip id", idx)}}
	case TargetClip:
		id, _ := t.ClipIDValue()
		if _, ok := p.IndexOf(id); !ok {
			return []Issue{{ClipID: clipID, Where: where, Severity: SeverityWarning, Message: fmt.Sprintf("unknown clip id %q; choice does nothing", id)}}
		}
	}
	return nil
}
