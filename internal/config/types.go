// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// AppConfig is the daemon configuration after defaults, file and
// environment have been merged.
type AppConfig struct {
	Version   string          `yaml:"version,omitempty"`
	Server    ServerConfig    `yaml:"server"`
	Playlist  PlaylistConfig  `yaml:"playlist"`
	Player    PlayerConfig    `yaml:"player"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	HLS       HLSConfig       `yaml:"hls"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// SessionRateLimit caps session creations per client IP and minute.
	SessionRateLimit int `yaml:"sessionRateLimit"`
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy bool `yaml:"trustProxy"`
	// MediaBaseURL prefixes relative clip locators in the M3U export.
	MediaBaseURL string `yaml:"mediaBaseUrl"`
}

// PlaylistConfig points at the clip catalogue.
type PlaylistConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// PlayerConfig holds the runtime defaults applied to every new session.
type PlayerConfig struct {
	Title       string        `yaml:"title"`
	AutoAdvance bool          `yaml:"autoAdvance"`
	ShowBar     bool          `yaml:"showBar"`
	HideDelay   time.Duration `yaml:"hideDelay"`
}

// SessionsConfig bounds the session registry.
type SessionsConfig struct {
	Max           int           `yaml:"max"`
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// RedisConfig enables fan-out of lifecycle events over redis PUBLISH.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
	Buffer   int    `yaml:"buffer"`
}

// TelemetryConfig configures the OpenTelemetry tracer provider.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	ServiceName  string  `yaml:"serviceName"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// HLSConfig tunes manifest probing.
type HLSConfig struct {
	ProbeTimeout time.Duration `yaml:"probeTimeout"`
	// ProbeOnReady makes /readyz fetch every adaptive manifest.
	ProbeOnReady bool `yaml:"probeOnReady"`
}
