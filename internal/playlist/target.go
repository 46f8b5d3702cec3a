// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TargetKind discriminates the navigation target variants.
type TargetKind uint8

const (
	// TargetNone is a missing or unreadable target. It always resolves to a no-op.
	TargetNone TargetKind = iota
	// TargetAutoNext advances to the next clip.
	TargetAutoNext
	// TargetHome returns to the first clip and resets the session.
	TargetHome
	// TargetIndex jumps to an explicit playlist index.
	TargetIndex
	// TargetClip jumps to the clip with an explicit id.
	TargetClip
)

// Wire values of the two sentinel targets.
const (
	GoToAutoNext = "autoNext"
	GoToHome     = "home"
)

func (k TargetKind) String() string {
	switch k {
	case TargetAutoNext:
		return "auto_next"
	case TargetHome:
		return "home"
	case TargetIndex:
		return "index"
	case TargetClip:
		return "clip"
	default:
		return "none"
	}
}

// Target is where a CTA or hotspot leads. The zero value is TargetNone.
type Target struct {
	kind   TargetKind
	index  int
	clipID string
}

func AutoNext() Target            { return Target{kind: TargetAutoNext} }
func Home() Target                { return Target{kind: TargetHome} }
func Index(i int) Target          { return Target{kind: TargetIndex, index: i} }
func ClipID(id string) Target     { return Target{kind: TargetClip, clipID: id} }
func (t Target) Kind() TargetKind { return t.kind }

// IndexValue returns the explicit index for TargetIndex.
func (t Target) IndexValue() (int, bool) {
	return t.index, t.kind == TargetIndex
}

// ClipIDValue returns the explicit clip id for TargetClip.
func (t Target) ClipIDValue() (string, bool) {
	return t.clipID, t.kind == TargetClip
}

// String renders the target the way it is written in playlist files.
func (t Target) String() string {
	switch t.kind {
	case TargetAutoNext:
		return GoToAutoNext
	case TargetHome:
		return GoToHome
	case TargetIndex:
		return strconv.Itoa(t.index)
	case TargetClip:
		return t.clipID
	default:
		return ""
	}
}

// targetFromString maps a textual goTo to a variant.
func targetFromString(s string) Target {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Target{}
	case GoToAutoNext:
		return AutoNext()
	case GoToHome:
		return Home()
	default:
		return ClipID(s)
	}
}

func targetFromFloat(f float64) Target {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Target{}
	}
	return Index(int(f))
}

// MarshalJSON encodes index targets as numbers, everything else as strings.
func (t Target) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case TargetNone:
		return []byte("null"), nil
	case TargetIndex:
		return json.Marshal(t.index)
	default:
		return json.Marshal(t.String())
	}
}

// UnmarshalJSON never fails on an unexpected shape: unreadable targets decode
// to TargetNone so a broken choice degrades to a no-op.
func (t *Target) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = Target{}
		return nil
	}
	switch v := raw.(type) {
	case string:
		*t = targetFromString(v)
	case float64:
		*t = targetFromFloat(v)
	default:
		*t = Target{}
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (t Target) MarshalYAML() (any, error) {
	switch t.kind {
	case TargetNone:
		return nil, nil
	case TargetIndex:
		return t.index, nil
	default:
		return t.String(), nil
	}
}

// UnmarshalYAML accepts integers, sentinel strings and clip ids.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		*t = Target{}
		return nil
	}
	switch node.ShortTag() {
	case "!!int":
		i, err := strconv.Atoi(node.Value)
		if err != nil {
			*t = Target{}
			return nil
		}
		*t = Index(i)
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			*t = Target{}
			return nil
		}
		*t = targetFromFloat(f)
	case "!!str":
		*t = targetFromString(node.Value)
	default:
		*t = Target{}
	}
	return nil
}
