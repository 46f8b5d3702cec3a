// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/ManuGH/branchplay/internal/hls"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/redis/go-redis/v9"
)

// PlaylistSource yields the currently served playlist.
type PlaylistSource interface {
	Get() *playlist.Playlist
}

// PlaylistChecker reports whether a playlist is loaded. Lint warnings
// degrade the status; hazards are ignored.
type PlaylistChecker struct {
	src PlaylistSource
}

// NewPlaylistChecker creates a checker over src.
func NewPlaylistChecker(src PlaylistSource) *PlaylistChecker {
	return &PlaylistChecker{src: src}
}

func (c *PlaylistChecker) Name() string { return "playlist" }

func (c *PlaylistChecker) Check(_ context.Context) CheckResult {
	p := c.src.Get()
	if p == nil {
		return CheckResult{Status: StatusUnhealthy, Error: "no playlist loaded"}
	}
	var warnings []playlist.Issue
	for _, issue := range playlist.Lint(p) {
		if issue.Severity == playlist.SeverityWarning {
			warnings = append(warnings, issue)
		}
	}
	if len(warnings) > 0 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d clips, %d authoring warnings", p.Len(), len(warnings)),
			Error:   warnings[0].String(),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d clips", p.Len())}
}

// RedisChecker pings the event fan-out redis.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a checker for client.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string { return "redis" }

// Check reports ping failures as degraded, never unhealthy.
func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return CheckResult{Status: StatusDegraded, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "pong"}
}

// ManifestChecker probes every adaptive clip source of the playlist.
type ManifestChecker struct {
	src    PlaylistSource
	prober *hls.Prober
}

// NewManifestChecker creates a checker probing manifests with prober.
func NewManifestChecker(src PlaylistSource, prober *hls.Prober) *ManifestChecker {
	return &ManifestChecker{src: src, prober: prober}
}

func (c *ManifestChecker) Name() string { return "manifests" }

func (c *ManifestChecker) Check(ctx context.Context) CheckResult {
	p := c.src.Get()
	if p == nil {
		return CheckResult{Status: StatusHealthy, Message: "no playlist"}
	}
	var failed []string
	probed := 0
	for _, clip := range p.Clips() {
		if !clip.IsAdaptive() {
			continue
		}
		probed++
		if _, err := c.prober.Probe(ctx, clip.Src); err != nil {
			failed = append(failed, clip.ID)
		}
	}
	if len(failed) > 0 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d of %d manifests unreachable", len(failed), probed),
			Error:   strings.Join(failed, ","),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d manifests reachable", probed)}
}
