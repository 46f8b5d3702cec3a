// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"time"

	"github.com/ManuGH/branchplay/internal/validate"
)

// Exporter names accepted by Telemetry.Exporter.
const (
	ExporterGRPC = "grpc"
	ExporterHTTP = "http"
)

// Validate checks the merged configuration. The playlist file itself is
// checked by the playlist loader, not here.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.ListenAddr("Server.ListenAddr", cfg.Server.ListenAddr)
	v.DurationRange("Server.ReadTimeout", cfg.Server.ReadTimeout, 0, time.Hour)
	v.DurationRange("Server.WriteTimeout", cfg.Server.WriteTimeout, 0, time.Hour)
	v.DurationRange("Server.IdleTimeout", cfg.Server.IdleTimeout, 0, time.Hour)
	v.DurationRange("Server.ShutdownTimeout", cfg.Server.ShutdownTimeout, time.Second, 5*time.Minute)
	v.NonNegative("Server.SessionRateLimit", cfg.Server.SessionRateLimit)
	if cfg.Server.MediaBaseURL != "" {
		v.URL("Server.MediaBaseURL", cfg.Server.MediaBaseURL, []string{"http", "https"})
	}

	v.NotEmpty("Playlist.Path", cfg.Playlist.Path)

	v.DurationRange("Player.HideDelay", cfg.Player.HideDelay, 100*time.Millisecond, time.Minute)

	v.Range("Sessions.Max", cfg.Sessions.Max, 1, 100000)
	v.DurationRange("Sessions.IdleTimeout", cfg.Sessions.IdleTimeout, time.Second, 24*time.Hour)
	v.DurationRange("Sessions.SweepInterval", cfg.Sessions.SweepInterval, 100*time.Millisecond, time.Hour)

	v.OneOf("Log.Level", cfg.Log.Level, validate.LogLevels)

	if cfg.Redis.Enabled {
		v.HostPort("Redis.Addr", cfg.Redis.Addr)
		v.NotEmpty("Redis.Channel", cfg.Redis.Channel)
		v.Range("Redis.Buffer", cfg.Redis.Buffer, 1, 1<<20)
		v.Range("Redis.DB", cfg.Redis.DB, 0, 15)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{ExporterGRPC, ExporterHTTP})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.NotEmpty("Telemetry.ServiceName", cfg.Telemetry.ServiceName)
		v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	v.DurationRange("HLS.ProbeTimeout", cfg.HLS.ProbeTimeout, 100*time.Millisecond, time.Minute)

	return v.Err()
}
