// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/branchplay/internal/hls"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct{ p *playlist.Playlist }

func (s staticSource) Get() *playlist.Playlist { return s.p }

func mustParse(t *testing.T, doc string) *playlist.Playlist {
	t.Helper()
	p, err := playlist.Parse([]byte(doc))
	require.NoError(t, err)
	return p
}

func fixed(status Status) Checker {
	return CheckerFunc{ID: string(status), Fn: func(context.Context) CheckResult {
		return CheckResult{Status: status}
	}}
}

func TestManager_Health(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(fixed(StatusUnhealthy))

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status, "liveness ignores checkers unless verbose")
	assert.Nil(t, resp.Checks)
	assert.Equal(t, "v1.0.0", resp.Version)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Len(t, resp.Checks, 1)
}

func TestManager_Ready(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		ready    bool
		status   Status
	}{
		{"no checkers", nil, true, StatusHealthy},
		{"all healthy", []Checker{fixed(StatusHealthy)}, true, StatusHealthy},
		{"degraded", []Checker{fixed(StatusHealthy), fixed(StatusDegraded)}, true, StatusDegraded},
		{"unhealthy wins", []Checker{fixed(StatusUnhealthy), fixed(StatusDegraded)}, false, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("dev")
			for _, c := range tt.checkers {
				m.RegisterChecker(c)
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.ready, resp.Ready)
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestServeReady_StatusCodes(t *testing.T) {
	m := NewManager("dev")
	m.RegisterChecker(NewPlaylistChecker(staticSource{}))

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Ready)
	assert.Equal(t, "no playlist loaded", body.Checks["playlist"].Error)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestPlaylistChecker(t *testing.T) {
	ok := mustParse(t, `
clips:
  - id: intro
    title: Intro
    src: intro.mp4
    ctas:
      - label: Next
        goTo: outro
  - id: outro
    title: Outro
    src: outro.mp4
`)
	res := NewPlaylistChecker(staticSource{ok}).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "2 clips", res.Message)

	broken := mustParse(t, `
clips:
  - id: intro
    title: Intro
    src: intro.mp4
    ctas:
      - label: Nowhere
        goTo: missing
`)
	res = NewPlaylistChecker(staticSource{broken}).Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Contains(t, res.Error, "missing")
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisChecker(client)
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)

	mr.Close()
	assert.Equal(t, StatusDegraded, c.Check(context.Background()).Status)
}

func TestManifestChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.m3u8" {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, "#EXTM3U\n#EXTINF:4.0,\nseg0.ts\n#EXT-X-ENDLIST\n")
	}))
	t.Cleanup(srv.Close)

	p := mustParse(t, fmt.Sprintf(`
clips:
  - {id: a, title: A, src: "%[1]s/ok.m3u8"}
  - {id: b, title: B, src: "%[1]s/gone.m3u8"}
  - {id: c, title: C, src: "local.mp4"}
`, srv.URL))

	res := NewManifestChecker(staticSource{p}, hls.NewProber(2*time.Second)).Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Equal(t, "1 of 2 manifests unreachable", res.Message)
	assert.Equal(t, "b", res.Error)
}
