// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"regexp"
	"strings"
)

// BlockKind classifies a paragraph block of a modal body.
type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockSubheading BlockKind = "subheading"
	BlockParagraph  BlockKind = "paragraph"
)

// Block is one rendered unit of a modal body.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

// Modal is the extended reading attached to a clip.
type Modal struct {
	Title  string `json:"title" yaml:"title"`
	Teaser string `json:"teaser,omitempty" yaml:"teaser,omitempty"`
	Body   string `json:"body" yaml:"body"`
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// Blocks parses the modal body.
func (m Modal) Blocks() []Block {
	return ParseBody(m.Body)
}

// ParseBody splits body on blank lines. A block wholly wrapped in ** is a
// heading, one wholly wrapped in single * is a sub-heading, anything else is
// a paragraph with its inner line breaks kept.
func ParseBody(body string) []Block {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	parts := blankLine.Split(body, -1)

	blocks := make([]Block, 0, len(parts))
	for _, part := range parts {
		text := strings.TrimSpace(part)
		if text == "" {
			continue
		}
		blocks = append(blocks, classify(text))
	}
	return blocks
}

func classify(text string) Block {
	if inner, ok := wrapped(text, "**"); ok {
		return Block{Kind: BlockHeading, Text: inner}
	}
	if inner, ok := wrapped(text, "*"); ok && !strings.HasPrefix(inner, "*") && !strings.HasSuffix(inner, "*") {
		return Block{Kind: BlockSubheading, Text: inner}
	}
	return Block{Kind: BlockParagraph, Text: text}
}

func wrapped(text, marker string) (string, bool) {
	if len(text) <= 2*len(marker) {
		return "", false
	}
	if !strings.HasPrefix(text, marker) || !strings.HasSuffix(text, marker) {
		return "", false
	}
	inner := strings.TrimSpace(text[len(marker) : len(text)-len(marker)])
	if inner == "" {
		return "", false
	}
	return inner, true
}
