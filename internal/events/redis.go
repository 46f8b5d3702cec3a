// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/ManuGH/branchplay/internal/resilience"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig configures the redis publisher.
type RedisConfig struct {
	Channel        string
	Buffer         int
	PublishTimeout time.Duration
	// BreakerThreshold consecutive publish failures stop publishing for
	// BreakerReset; events are dropped meanwhile.
	BreakerThreshold int
	BreakerReset     time.Duration
}

// RedisSink publishes events as JSON to a redis pub/sub channel. Emit only
// enqueues; a worker goroutine does the network I/O and events that do not
// fit in the buffer are dropped and counted.
type RedisSink struct {
	client  redis.UniversalClient
	cfg     RedisConfig
	queue   chan Event
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger
	wg      sync.WaitGroup
	closeMu sync.RWMutex
	closed  bool
}

// NewRedisSink starts the publish worker. Call Close to flush and stop it.
func NewRedisSink(client redis.UniversalClient, cfg RedisConfig) *RedisSink {
	if cfg.Channel == "" {
		cfg.Channel = "branchplay:events"
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1024
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	s := &RedisSink{
		client: client,
		cfg:    cfg,
		queue:  make(chan Event, cfg.Buffer),
		logger: xglog.WithComponent("events.redis"),
	}
	s.breaker = resilience.NewCircuitBreaker("redis_sink", cfg.BreakerThreshold, cfg.BreakerReset,
		resilience.WithStateChange(func(from, to resilience.State) {
			s.logger.Warn().
				Str(xglog.FieldEvent, "events.redis_breaker").
				Str(xglog.FieldOldState, string(from)).
				Str(xglog.FieldNewState, string(to)).
				Msg("redis publish breaker changed state")
		}))
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *RedisSink) Emit(e Event) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- e:
	default:
		metrics.IncSinkDropped("redis")
	}
}

func (s *RedisSink) run() {
	defer s.wg.Done()
	for e := range s.queue {
		payload, err := json.Marshal(e)
		if err != nil {
			s.logger.Error().Err(err).Str(xglog.FieldEvent, "events.redis_marshal_failed").Msg("failed to encode event")
			continue
		}
		err = s.breaker.Execute(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PublishTimeout)
			defer cancel()
			return s.client.Publish(ctx, s.cfg.Channel, payload).Err()
		})
		if errors.Is(err, resilience.ErrCircuitOpen) {
			metrics.IncSinkDropped("redis")
			continue
		}
		if err != nil {
			metrics.IncSinkDropped("redis")
			s.logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "events.redis_publish_failed").
				Str("channel", s.cfg.Channel).
				Msg("failed to publish lifecycle event")
		}
	}
}

// Close stops accepting events and waits until queued ones are published.
func (s *RedisSink) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.closeMu.Unlock()

	s.wg.Wait()
	return nil
}
