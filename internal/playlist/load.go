// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk playlist format. JSON documents are accepted as
// well since they are valid YAML.
type Document struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Clips []Clip `json:"clips" yaml:"clips"`
}

// Parse decodes a playlist document. A bare top-level list of clips is
// accepted as shorthand for {clips: [...]}.
func Parse(data []byte) (*Playlist, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPlaylist
		}
		return nil, fmt.Errorf("decode playlist: %w", err)
	}

	doc := Document{}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&doc.Clips); err != nil {
			return nil, fmt.Errorf("decode clips: %w", err)
		}
	case yaml.MappingNode:
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode playlist: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode playlist: unexpected top-level %s", node.ShortTag())
	}
	return New(doc.Title, doc.Clips)
}

// LoadFile reads and parses a playlist file.
func LoadFile(path string) (*Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Document returns the playlist in its serialisable form.
func (p *Playlist) Document() Document {
	return Document{Title: p.title, Clips: p.Clips()}
}
