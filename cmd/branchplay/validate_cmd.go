// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ManuGH/branchplay/internal/hls"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/google/renameio/v2"
)

// validateOptions are the parsed flags of the validate command.
type validateOptions struct {
	path    string
	probe   bool
	base    string
	timeout time.Duration
	out     string
	strict  bool
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("branchplay validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts validateOptions
	fs.StringVar(&opts.path, "file", "", "path to the playlist (YAML or JSON)")
	fs.StringVar(&opts.path, "f", "", "path to the playlist (shorthand)")
	fs.BoolVar(&opts.probe, "probe", false, "fetch every adaptive manifest over HTTP")
	fs.StringVar(&opts.base, "base", "", "base URL for relative clip locators when probing")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Second, "per-manifest probe timeout")
	fs.StringVar(&opts.out, "out", "", "write the normalized playlist as JSON to this path")
	fs.BoolVar(&opts.strict, "strict", false, "treat lint hazards as errors")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.path == "" && fs.NArg() > 0 {
		opts.path = fs.Arg(0)
	}
	opts.path = strings.TrimSpace(opts.path)
	if opts.path == "" {
		fmt.Fprintln(stderr, "Error: a playlist path is required")
		return 2
	}

	return validatePlaylist(context.Background(), opts, stdout, stderr)
}

func validatePlaylist(ctx context.Context, opts validateOptions, stdout, stderr io.Writer) int {
	p, err := playlist.LoadFile(opts.path)
	if err != nil {
		fmt.Fprintf(stderr, "Playlist error in %s:\n  %v\n", opts.path, err)
		return 1
	}

	code := 0
	issues := playlist.Lint(p)
	for _, issue := range issues {
		fmt.Fprintf(stdout, "  %s\n", issue)
		if issue.Severity == playlist.SeverityWarning || opts.strict {
			code = 1
		}
	}

	if opts.probe {
		if probeManifests(ctx, p, opts, stdout) > 0 {
			code = 1
		}
	}

	if opts.out != "" {
		data, err := json.MarshalIndent(p.Document(), "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "Error: encode playlist: %v\n", err)
			return 1
		}
		if err := renameio.WriteFile(opts.out, append(data, '\n'), 0o644); err != nil {
			fmt.Fprintf(stderr, "Error: write %s: %v\n", opts.out, err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %s\n", opts.out)
	}

	if code == 0 {
		fmt.Fprintf(stdout, "✓ %s is valid (%d clips, %d issues)\n", opts.path, p.Len(), len(issues))
	} else {
		fmt.Fprintf(stdout, "✗ %s has problems\n", opts.path)
	}
	return code
}

// probeManifests fetches each adaptive clip source and returns the number of
// failures. Relative locators are skipped unless a base URL is given.
func probeManifests(ctx context.Context, p *playlist.Playlist, opts validateOptions, w io.Writer) int {
	prober := hls.NewProber(opts.timeout)
	failed := 0
	for _, c := range p.Clips() {
		if !c.IsAdaptive() {
			continue
		}
		target := playlist.Resolve(opts.base, c.Src)
		if !strings.Contains(target, "://") {
			fmt.Fprintf(w, "  %s: skipped relative locator %s\n", c.ID, c.Src)
			continue
		}
		res, err := prober.Probe(ctx, target)
		if err != nil {
			failed++
			fmt.Fprintf(w, "  %s: probe failed: %v\n", c.ID, err)
			continue
		}
		kind := "live"
		if (res.Media != nil && res.Media.IsVOD) || (res.Manifest != nil && res.Manifest.IsVOD) {
			kind = "vod"
		}
		fmt.Fprintf(w, "  %s: ok (%s, %s)\n", c.ID, kind, res.Duration())
	}
	return failed
}
