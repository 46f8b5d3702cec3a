// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package hls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxManifestBytes = 4 << 20

// ErrUnexpectedStatus is returned when a manifest fetch does not answer 200.
var ErrUnexpectedStatus = errors.New("hls: unexpected status")

// Result is what a probe learned about a clip manifest.
type Result struct {
	URL      string
	Manifest *Manifest
	// Media is the highest-bandwidth variant's manifest when URL is a master.
	Media *Manifest
}

// Duration returns the media duration, 0 when unknown.
func (r Result) Duration() time.Duration {
	switch {
	case r.Media != nil:
		return r.Media.TotalDuration
	case r.Manifest != nil && !r.Manifest.Master:
		return r.Manifest.TotalDuration
	}
	return 0
}

// Prober fetches manifests over HTTP.
type Prober struct {
	client *http.Client
}

// NewProber returns a prober whose transport is traced with otelhttp.
func NewProber(timeout time.Duration) *Prober {
	return &Prober{client: &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}}
}

// NewProberWithClient uses client as is.
func NewProberWithClient(client *http.Client) *Prober {
	return &Prober{client: client}
}

// Probe fetches and parses the manifest at rawURL. For a master manifest the
// best variant is fetched as well.
func (p *Prober) Probe(ctx context.Context, rawURL string) (Result, error) {
	res := Result{URL: rawURL}
	m, err := p.fetch(ctx, rawURL)
	if err != nil {
		return res, err
	}
	res.Manifest = m

	best, ok := m.Best()
	if !ok {
		return res, nil
	}
	variantURL, err := resolveRef(rawURL, best.URI)
	if err != nil {
		return res, err
	}
	media, err := p.fetch(ctx, variantURL)
	if err != nil {
		return res, fmt.Errorf("variant %s: %w", best.URI, err)
	}
	res.Media = media
	return res, nil
}

func (p *Prober) fetch(ctx context.Context, rawURL string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Extract(string(body))
}

func resolveRef(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
