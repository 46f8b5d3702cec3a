// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package hls inspects adaptive-streaming manifests referenced by clips.
package hls

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNotManifest is returned when the input does not start with #EXTM3U.
var ErrNotManifest = errors.New("hls: missing #EXTM3U header")

// Variant is one rendition listed by a master manifest.
type Variant struct {
	URI        string
	Bandwidth  int
	Resolution string
}

// Manifest summarises a master or media manifest.
type Manifest struct {
	Master        bool
	Variants      []Variant
	Segments      int
	TotalDuration time.Duration
	IsVOD         bool // #EXT-X-PLAYLIST-TYPE:VOD or #EXT-X-ENDLIST
}

// Extract parses a manifest body. Master manifests yield variants, media
// manifests yield the segment count and the summed EXTINF duration.
func Extract(body string) (*Manifest, error) {
	scanner := bufio.NewScanner(strings.NewReader(body))
	m := &Manifest{}

	var (
		sawHeader    bool
		nextDuration time.Duration
		pending      *Variant
		hasEndList   bool
		typeVOD      bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !sawHeader {
			if line != "#EXTM3U" {
				return nil, ErrNotManifest
			}
			sawHeader = true
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			v, err := parseStreamInf(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
			if err != nil {
				return nil, err
			}
			pending = &v
			m.Master = true
		case strings.HasPrefix(line, "#EXT-X-PLAYLIST-TYPE:"):
			typeVOD = strings.TrimPrefix(line, "#EXT-X-PLAYLIST-TYPE:") == "VOD"
		case line == "#EXT-X-ENDLIST":
			hasEndList = true
		case strings.HasPrefix(line, "#EXTINF:"):
			// Format: #EXTINF:10.000,title
			durPart := strings.TrimPrefix(line, "#EXTINF:")
			if idx := strings.Index(durPart, ","); idx != -1 {
				durPart = durPart[:idx]
			}
			secs, err := strconv.ParseFloat(durPart, 64)
			if err != nil || secs < 0 {
				return nil, fmt.Errorf("hls: invalid EXTINF duration: %s", durPart)
			}
			nextDuration = time.Duration(secs * float64(time.Second))
		case strings.HasPrefix(line, "#"):
			// other tags and comments
		default:
			if pending != nil {
				pending.URI = line
				m.Variants = append(m.Variants, *pending)
				pending = nil
				continue
			}
			m.Segments++
			m.TotalDuration += nextDuration
			nextDuration = 0
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !sawHeader {
		return nil, ErrNotManifest
	}
	if pending != nil {
		return nil, errors.New("hls: EXT-X-STREAM-INF without URI")
	}

	m.IsVOD = typeVOD || hasEndList
	return m, nil
}

// parseStreamInf reads BANDWIDTH and RESOLUTION from an attribute list,
// honouring quoted values that contain commas.
func parseStreamInf(attrs string) (Variant, error) {
	var v Variant
	for _, kv := range splitAttributes(attrs) {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch key {
		case "BANDWIDTH":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Variant{}, fmt.Errorf("hls: invalid BANDWIDTH: %s", val)
			}
			v.Bandwidth = n
		case "RESOLUTION":
			v.Resolution = val
		}
	}
	return v, nil
}

func splitAttributes(s string) []string {
	var (
		out    []string
		b      strings.Builder
		quoted bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			b.WriteRune(r)
		case r == ',' && !quoted:
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

// Best returns the variant with the highest bandwidth.
func (m *Manifest) Best() (Variant, bool) {
	if len(m.Variants) == 0 {
		return Variant{}, false
	}
	best := m.Variants[0]
	for _, v := range m.Variants[1:] {
		if v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	return best, true
}
