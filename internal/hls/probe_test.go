// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package hls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/gate/master.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(masterPlaylist))
	})
	mux.HandleFunc("/gate/mid/index.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(vodPlaylist))
	})
	mux.HandleFunc("/hall.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(vodPlaylist))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe_MasterFollowsBestVariant(t *testing.T) {
	srv := manifestServer(t)
	p := NewProber(5 * time.Second)

	res, err := p.Probe(context.Background(), srv.URL+"/gate/master.m3u8")
	require.NoError(t, err)
	require.True(t, res.Manifest.Master)
	require.NotNil(t, res.Media)
	assert.Equal(t, 19500*time.Millisecond, res.Duration())
}

func TestProbe_MediaPlaylist(t *testing.T) {
	srv := manifestServer(t)
	res, err := NewProberWithClient(srv.Client()).Probe(context.Background(), srv.URL+"/hall.m3u8")
	require.NoError(t, err)
	assert.Nil(t, res.Media)
	assert.True(t, res.Manifest.IsVOD)
	assert.Equal(t, 19500*time.Millisecond, res.Duration())
}

func TestProbe_NotFound(t *testing.T) {
	srv := manifestServer(t)
	_, err := NewProber(time.Second).Probe(context.Background(), srv.URL+"/missing.m3u8")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestProbe_ContextCanceled(t *testing.T) {
	srv := manifestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProber(time.Second).Probe(ctx, srv.URL+"/hall.m3u8")
	require.ErrorIs(t, err, context.Canceled)
}
