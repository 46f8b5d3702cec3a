// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults,
// then validates the merged result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.configPath != "" {
		if err := l.mergeFile(&cfg, l.configPath); err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
	}

	l.mergeEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			ListenAddr:       ":8080",
			ReadTimeout:      10 * time.Second,
			WriteTimeout:     0,
			IdleTimeout:      120 * time.Second,
			ShutdownTimeout:  15 * time.Second,
			SessionRateLimit: 30,
		},
		Playlist: PlaylistConfig{
			Path:  "playlist.yaml",
			Watch: true,
		},
		Player: PlayerConfig{
			AutoAdvance: false,
			ShowBar:     true,
			HideDelay:   1600 * time.Millisecond,
		},
		Sessions: SessionsConfig{
			Max:           256,
			IdleTimeout:   10 * time.Minute,
			SweepInterval: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Redis: RedisConfig{
			Addr:    "localhost:6379",
			Channel: "branchplay:events",
			Buffer:  1024,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			ServiceName:  "branchplay",
			SamplingRate: 1.0,
		},
		HLS: HLSConfig{
			ProbeTimeout: 5 * time.Second,
		},
	}
}

// mergeFile decodes the YAML file on top of cfg. Keys absent from the file
// keep their current value.
func (l *Loader) mergeFile(cfg *AppConfig, path string) error {
	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrMultipleDocuments
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	p := EnvPrefix

	cfg.Server.ListenAddr = l.envString(p+"LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Server.ReadTimeout = l.envDuration(p+"READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration(p+"WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration(p+"IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration(p+"SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.SessionRateLimit = l.envInt(p+"SESSION_RATE_LIMIT", cfg.Server.SessionRateLimit)
	cfg.Server.TrustProxy = l.envBool(p+"TRUST_PROXY", cfg.Server.TrustProxy)
	cfg.Server.MediaBaseURL = l.envString(p+"MEDIA_BASE_URL", cfg.Server.MediaBaseURL)

	cfg.Playlist.Path = l.envString(p+"PLAYLIST", cfg.Playlist.Path)
	cfg.Playlist.Watch = l.envBool(p+"PLAYLIST_WATCH", cfg.Playlist.Watch)

	cfg.Player.Title = l.envString(p+"TITLE", cfg.Player.Title)
	cfg.Player.AutoAdvance = l.envBool(p+"AUTO_ADVANCE", cfg.Player.AutoAdvance)
	cfg.Player.ShowBar = l.envBool(p+"SHOW_BAR", cfg.Player.ShowBar)
	cfg.Player.HideDelay = l.envDuration(p+"HIDE_DELAY", cfg.Player.HideDelay)

	cfg.Sessions.Max = l.envInt(p+"MAX_SESSIONS", cfg.Sessions.Max)
	cfg.Sessions.IdleTimeout = l.envDuration(p+"SESSION_IDLE_TIMEOUT", cfg.Sessions.IdleTimeout)
	cfg.Sessions.SweepInterval = l.envDuration(p+"SESSION_SWEEP_INTERVAL", cfg.Sessions.SweepInterval)

	cfg.Log.Level = l.envString(p+"LOG_LEVEL", cfg.Log.Level)

	cfg.Redis.Enabled = l.envBool(p+"REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = l.envString(p+"REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = l.envString(p+"REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = l.envInt(p+"REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Channel = l.envString(p+"REDIS_CHANNEL", cfg.Redis.Channel)
	cfg.Redis.Buffer = l.envInt(p+"REDIS_BUFFER", cfg.Redis.Buffer)

	cfg.Telemetry.Enabled = l.envBool(p+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(p+"TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(p+"TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.ServiceName = l.envString(p+"TELEMETRY_SERVICE_NAME", cfg.Telemetry.ServiceName)
	cfg.Telemetry.SamplingRate = l.envFloat(p+"TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	cfg.HLS.ProbeTimeout = l.envDuration(p+"HLS_PROBE_TIMEOUT", cfg.HLS.ProbeTimeout)
	cfg.HLS.ProbeOnReady = l.envBool(p+"HLS_PROBE_ON_READY", cfg.HLS.ProbeOnReady)
}
