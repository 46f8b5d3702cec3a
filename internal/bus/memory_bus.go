// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	xglog "github.com/ManuGH/branchplay/internal/log"
	"github.com/ManuGH/branchplay/internal/metrics"
	"golang.org/x/time/rate"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

// MemoryBus is an in-memory pub/sub. It is not durable and delivers
// at-most-once to subscribers that keep up.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]chan Message
	buffer int

	dropped atomic.Uint64
	dropLog rate.Sometimes
}

func NewMemoryBus() *MemoryBus {
	return NewMemoryBusWithBuffer(DefaultBuffer)
}

// NewMemoryBusWithBuffer sets the per-subscriber buffer size.
func NewMemoryBusWithBuffer(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &MemoryBus{
		subs:    make(map[string][]chan Message),
		buffer:  buffer,
		dropLog: rate.Sometimes{First: 1, Every: 100},
	}
}

func publishDropReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "context_done"
	}
}

// topicClass strips the per-session suffix ("session/<id>" -> "session") so
// metric labels stay low-cardinality.
func topicClass(topic string) string {
	if i := strings.IndexByte(topic, '/'); i > 0 {
		return topic[:i]
	}
	return topic
}

// Publish delivers msg to every subscriber, waiting for slow ones until ctx
// is done. Subscribe and Close wait while a publish is blocked.
func (b *MemoryBus) Publish(ctx context.Context, topic string, msg Message) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- msg:
		case <-ctx.Done():
			b.recordDrop(topic, publishDropReason(ctx.Err()))
			return fmt.Errorf("publish topic %q: %w", topic, ctx.Err())
		}
	}
	return nil
}

// TryPublish delivers msg without blocking; subscribers with a full buffer
// miss it. It returns the number of subscribers that received the message.
// The player loop publishes through this path so a stalled consumer can
// never hold up playback.
func (b *MemoryBus) TryPublish(topic string, msg Message) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for _, ch := range b.subs[topic] {
		select {
		case ch <- msg:
			delivered++
		default:
			b.recordDrop(topic, "full")
		}
	}
	return delivered
}

func (b *MemoryBus) recordDrop(topic, reason string) {
	metrics.IncBusDropReason(topicClass(topic), reason)
	count := b.dropped.Add(1)
	b.dropLog.Do(func() {
		xglog.L().Warn().
			Str("topic", topic).
			Str("reason", reason).
			Uint64("dropped", count).
			Msg("memory bus dropped a message")
	})
}

// Subscribe registers a new subscriber on topic.
func (b *MemoryBus) Subscribe(_ context.Context, topic string) (Subscriber, error) {
	ch := make(chan Message, b.buffer)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	return &memSub{b: b, topic: topic, ch: ch}, nil
}

// Subscribers returns the number of subscribers on topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// CloseTopic closes every subscriber of topic.
func (b *MemoryBus) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[topic] {
		close(ch)
	}
	delete(b.subs, topic)
}

type memSub struct {
	b     *MemoryBus
	topic string
	ch    chan Message
	once  sync.Once
}

func (s *memSub) C() <-chan Message {
	return s.ch
}

func (s *memSub) Close() error {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()

		lst, ok := s.b.subs[s.topic]
		if !ok {
			// CloseTopic already closed the channel.
			return
		}
		out := lst[:0]
		found := false
		for _, c := range lst {
			if c != s.ch {
				out = append(out, c)
			} else {
				found = true
			}
		}
		if len(out) == 0 {
			delete(s.b.subs, s.topic)
		} else {
			s.b.subs[s.topic] = out
		}
		if found {
			close(s.ch)
		}
	})
	return nil
}

var _ Bus = (*MemoryBus)(nil)
