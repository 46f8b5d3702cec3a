// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/branchplay/internal/api"
	"github.com/ManuGH/branchplay/internal/api/middleware"
	"github.com/ManuGH/branchplay/internal/bus"
	"github.com/ManuGH/branchplay/internal/config"
	"github.com/ManuGH/branchplay/internal/daemon"
	"github.com/ManuGH/branchplay/internal/events"
	"github.com/ManuGH/branchplay/internal/health"
	"github.com/ManuGH/branchplay/internal/hls"
	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/ManuGH/branchplay/internal/player"
	"github.com/ManuGH/branchplay/internal/playlist"
	"github.com/ManuGH/branchplay/internal/sessions"
	"github.com/ManuGH/branchplay/internal/telemetry"
	"github.com/ManuGH/branchplay/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func runServe(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("branchplay serve", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var configPath string
	fs.StringVar(&configPath, "config", "", "path to config file (YAML)")
	fs.StringVar(&configPath, "c", "", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	configPath = strings.TrimSpace(configPath)
	if configPath == "" {
		configPath = strings.TrimSpace(config.ParseString(config.EnvPrefix+"CONFIG", ""))
	}

	// Safe defaults until the configuration is loaded.
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "branchplay",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewLoader(configPath, version.Version).Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str(xglog.FieldPath, configPath).
			Msg("failed to load configuration")
		return 1
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.Log.Level,
		Service: cfg.Telemetry.ServiceName,
		Version: version.Version,
	})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if configPath != "" {
		source = "file"
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str(xglog.FieldSource, source).
		Str(xglog.FieldPath, configPath).
		Msg("configuration loaded")

	if err := serve(ctx, cfg); err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "daemon.failed").
			Msg("daemon failed")
		return 1
	}
	logger.Info().Str(xglog.FieldEvent, "daemon.exit").Msg("server exiting")
	return 0
}

// serve wires every component and blocks until ctx is cancelled or a worker
// fails.
func serve(ctx context.Context, cfg config.AppConfig) error {
	logger := xglog.WithComponent("daemon")

	initial, err := playlist.LoadFile(cfg.Playlist.Path)
	if err != nil {
		return err
	}
	for _, issue := range playlist.Lint(initial) {
		logger.Warn().
			Str(xglog.FieldEvent, "playlist.lint").
			Str(xglog.FieldClipID, issue.ClipID).
			Str("where", issue.Where).
			Str("severity", string(issue.Severity)).
			Msg(issue.Message)
	}
	metrics.ObservePlaylist(initial.Len(), false)

	watchPath := ""
	if cfg.Playlist.Watch {
		watchPath = cfg.Playlist.Path
	}
	holder := playlist.NewHolder(initial, watchPath)
	reloads := make(chan *playlist.Playlist, 1)
	holder.RegisterListener(reloads)

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.Server.ListenAddr).
		Int("clips", initial.Len()).
		Msg("starting branchplay")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return err
	}

	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewPlaylistChecker(holder))
	if cfg.HLS.ProbeOnReady {
		hm.RegisterChecker(health.NewManifestChecker(holder, hls.NewProber(cfg.HLS.ProbeTimeout)))
	}

	sinks := events.Multi{events.NewLogSink(), events.MetricsSink{}}
	var (
		redisClient *redis.Client
		redisSink   *events.RedisSink
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisSink = events.NewRedisSink(redisClient, events.RedisConfig{
			Channel: cfg.Redis.Channel,
			Buffer:  cfg.Redis.Buffer,
		})
		sinks = append(sinks, redisSink)
		hm.RegisterChecker(health.NewRedisChecker(redisClient))
		logger.Info().
			Str(xglog.FieldEvent, "events.redis_enabled").
			Str("addr", cfg.Redis.Addr).
			Str("channel", cfg.Redis.Channel).
			Msg("publishing lifecycle events to redis")
	}

	registry := sessions.New(sessions.Config{
		MaxSessions:   cfg.Sessions.Max,
		IdleTimeout:   cfg.Sessions.IdleTimeout,
		SweepInterval: cfg.Sessions.SweepInterval,
		Defaults: player.Options{
			Title:       cfg.Player.Title,
			AutoAdvance: cfg.Player.AutoAdvance,
			ShowBar:     cfg.Player.ShowBar,
			HideDelay:   cfg.Player.HideDelay,
		},
		Sink: sinks,
	}, holder, bus.NewMemoryBus())

	srv := api.New(api.Deps{
		Registry:  registry,
		Playlists: holder,
		Health:    hm,
		Metrics:   promhttp.Handler(),
		Stack: middleware.StackConfig{
			EnableMetrics:  true,
			TracingService: tracingService(cfg),
			EnableLogging:  true,
			TrustProxy:     cfg.Server.TrustProxy,
		},
		SessionRateLimit: cfg.Server.SessionRateLimit,
		MediaBaseURL:     cfg.Server.MediaBaseURL,
	})

	mgr, err := daemon.NewManager(daemon.ServerConfig{
		ListenAddr:      cfg.Server.ListenAddr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, daemon.Deps{
		Logger:     logger,
		APIHandler: srv.Handler(),
		Workers: []daemon.Worker{
			{Name: "sessions", Run: registry.Run},
			{Name: "playlist-watcher", Run: func(ctx context.Context) error {
				if err := holder.StartWatcher(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				return nil
			}},
			{Name: "playlist-reloads", Run: func(ctx context.Context) error {
				return observeReloads(ctx, reloads)
			}},
		},
	})
	if err != nil {
		return err
	}

	// Hooks run in reverse order; the tracer provider flushes last.
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	if redisSink != nil {
		mgr.RegisterShutdownHook("redis", func(context.Context) error {
			sinkErr := redisSink.Close()
			if err := redisClient.Close(); err != nil {
				return err
			}
			return sinkErr
		})
	}
	return mgr.Start(ctx)
}

// observeReloads records each playlist the watcher swaps in. Running
// sessions keep the playlist they were created with.
func observeReloads(ctx context.Context, reloads <-chan *playlist.Playlist) error {
	logger := xglog.WithComponent("playlist")
	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-reloads:
			metrics.ObservePlaylist(p.Len(), true)
			logger.Info().
				Str(xglog.FieldEvent, "playlist.reloaded").
				Int("clips", p.Len()).
				Msg("new sessions use the reloaded playlist")
		}
	}
}

func tracingService(cfg config.AppConfig) string {
	if !cfg.Telemetry.Enabled {
		return ""
	}
	return cfg.Telemetry.ServiceName
}
