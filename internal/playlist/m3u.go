// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// WriteM3U renders the clips as a linear extended M3U playlist, for players
// that cannot follow branches. baseURL, when set, prefixes relative sources.
func WriteM3U(w io.Writer, p *Playlist, baseURL string) error {
	buf := &bytes.Buffer{}
	buf.WriteString("#EXTM3U\n")
	if p.title != "" {
		buf.WriteString("#PLAYLIST:" + sanitizeM3U(p.title) + "\n")
	}
	for _, c := range p.clips {
		buf.WriteString(fmt.Sprintf(
			`#EXTINF:-1 tvg-id="%s" tvg-logo="%s",%s`+"\n",
			sanitizeAttr(c.ID), sanitizeAttr(Resolve(baseURL, c.Poster)), sanitizeM3U(c.Title),
		))
		buf.WriteString(Resolve(baseURL, c.Src) + "\n")
	}
	_, err := io.Copy(w, buf)
	return err
}

func Resolve(baseURL, locator string) string {
	if locator == "" || baseURL == "" || strings.Contains(locator, "://") {
		return locator
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(locator, "/")
}

func sanitizeM3U(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func sanitizeAttr(s string) string {
	return strings.ReplaceAll(sanitizeM3U(s), `"`, "'")
}
