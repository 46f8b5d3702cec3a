// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LifecycleEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "branchplay_lifecycle_events_total",
		Help: "Player lifecycle events by kind",
	}, []string{"kind"})

	NavigationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "branchplay_navigation_total",
		Help: "Resolved viewer choices by source (cta, hotspot) and outcome (jump, reset, stay)",
	}, []string{"source", "outcome"})

	ClipActivationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "branchplay_clip_activations_total",
		Help: "Clip activations by attached source mode (direct, stream)",
	}, []string{"mode"})

	PlayRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "branchplay_play_rejected_total",
		Help: "Playback start attempts rejected by the surface",
	})

	StreamTeardownFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "branchplay_stream_teardown_failures_total",
		Help: "Streaming session handles that failed to release",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "branchplay_active_sessions",
		Help: "Remote player sessions currently registered",
	})

	SessionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "branchplay_sessions_expired_total",
		Help: "Remote player sessions removed by the idle sweeper",
	})

	SinkDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "branchplay_sink_dropped_total",
		Help: "Lifecycle events dropped by asynchronous sinks",
	}, []string{"sink"})

	PlaylistClips = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "branchplay_playlist_clips",
		Help: "Clips in the currently served playlist",
	})

	PlaylistReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "branchplay_playlist_reloads_total",
		Help: "Playlist file reloads applied by the watcher",
	})
)

// Known label values.
const (
	SourceCTA     = "cta"
	SourceHotspot = "hotspot"

	ModeDirect = "direct"
	ModeStream = "stream"
)

// IncLifecycleEvent records one emitted lifecycle event.
func IncLifecycleEvent(kind string) {
	LifecycleEventsTotal.WithLabelValues(kind).Inc()
}

// IncNavigation records the outcome of a resolved choice.
func IncNavigation(source, outcome string) {
	NavigationTotal.WithLabelValues(source, outcome).Inc()
}

// IncClipActivation records a clip activation by attach mode.
func IncClipActivation(mode string) {
	ClipActivationsTotal.WithLabelValues(mode).Inc()
}

func IncPlayRejected()           { PlayRejectedTotal.Inc() }
func IncStreamTeardownFailure()  { StreamTeardownFailuresTotal.Inc() }
func IncSessionsExpired()        { SessionsExpiredTotal.Inc() }
func IncSinkDropped(sink string) { SinkDroppedTotal.WithLabelValues(sink).Inc() }
func SetActiveSessions(n int)    { ActiveSessions.Set(float64(n)) }

// ObservePlaylist records a newly served playlist of n clips.
func ObservePlaylist(n int, reloaded bool) {
	PlaylistClips.Set(float64(n))
	if reloaded {
		PlaylistReloadsTotal.Inc()
	}
}
