// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playlist

import (
	"strings"
	"testing"
)

func TestWriteM3UTable(t *testing.T) {
	tests := []struct {
		name    string
		clips   []Clip
		title   string
		baseURL string
		expect  []string
	}{
		{
			name:  "relative sources stay relative without base",
			clips: []Clip{{ID: "ext-01", Title: "Misty Dawn", Src: "/media/mist.mp4", Poster: "/media/mist.jpg"}},
			title: "Castle",
			expect: []string{
				"#EXTM3U",
				"#PLAYLIST:Castle",
				`tvg-id="ext-01"`,
				`tvg-logo="/media/mist.jpg"`,
				",Misty Dawn",
				"/media/mist.mp4",
			},
		},
		{
			name:    "base url prefixes relative locators only",
			clips:   []Clip{{ID: "a", Title: "A", Src: "/media/a.m3u8"}, {ID: "b", Title: "B", Src: "https://cdn/b.mp4"}},
			baseURL: "http://host:8080/",
			expect: []string{
				"http://host:8080/media/a.m3u8",
				"\nhttps://cdn/b.mp4\n",
			},
		},
		{
			name:  "newlines and quotes are neutralised",
			clips: []Clip{{ID: `q"id`, Title: "two\nlines", Src: "x.mp4"}},
			expect: []string{
				`tvg-id="q'id"`,
				",two lines",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(tc.title, tc.clips)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			var b strings.Builder
			if err := WriteM3U(&b, p, tc.baseURL); err != nil {
				t.Fatalf("WriteM3U failed: %v", err)
			}
			out := b.String()
			for _, want := range tc.expect {
				if !strings.Contains(out, want) {
					t.Fatalf("missing substring %q\n--- output ---\n%s", want, out)
				}
			}
			if strings.Count(out, "#EXTINF:") != len(tc.clips) {
				t.Fatalf("expected %d EXTINF lines\n%s", len(tc.clips), out)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, locator, want string
	}{
		{"", "/media/a.mp4", "/media/a.mp4"},
		{"http://cdn", "", ""},
		{"http://cdn/", "/media/a.mp4", "http://cdn/media/a.mp4"},
		{"http://cdn", "media/a.m3u8", "http://cdn/media/a.m3u8"},
		{"http://cdn", "https://other/a.m3u8", "https://other/a.m3u8"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.base, tt.locator); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.locator, got, tt.want)
		}
	}
}
