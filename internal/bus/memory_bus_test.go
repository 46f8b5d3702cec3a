// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bus

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/branchplay/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestMemoryBusPublishContextTimeoutIncrementsDropMetrics(t *testing.T) {
	b := NewMemoryBus()
	sub, err := b.Subscribe(context.Background(), "session/abc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	// Fill subscriber channel to capacity so next publish blocks.
	for i := 0; i < cap(sub.C()); i++ {
		require.NoError(t, b.Publish(context.Background(), "session/abc", "msg"))
	}

	initial := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("session", "timeout"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = b.Publish(ctx, "session/abc", "blocked")
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	final := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("session", "timeout"))
	require.Greater(t, final, initial, "expected reasoned bus drop counter to increase")
}

func TestMemoryBusPublishRejectsNilContext(t *testing.T) {
	b := NewMemoryBus()
	err := b.Publish(nil, "topic", "msg") //nolint:staticcheck
	require.Error(t, err)
	require.Contains(t, err.Error(), "context is nil")
}

func TestMemoryBusTryPublishNeverBlocks(t *testing.T) {
	b := NewMemoryBusWithBuffer(2)
	sub, err := b.Subscribe(context.Background(), "session/x")
	require.NoError(t, err)
	defer sub.Close()

	initial := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("session", "full"))

	require.Equal(t, 1, b.TryPublish("session/x", 1))
	require.Equal(t, 1, b.TryPublish("session/x", 2))
	require.Equal(t, 0, b.TryPublish("session/x", 3))
	require.Equal(t, 0, b.TryPublish("session/none", 4))

	require.Equal(t, 1, <-sub.C())
	require.Equal(t, 2, <-sub.C())
	require.Equal(t, initial+1, getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("session", "full")))
}

func TestMemoryBusCloseTopicAndSubscriberClose(t *testing.T) {
	b := NewMemoryBus()
	s1, _ := b.Subscribe(context.Background(), "t")
	s2, _ := b.Subscribe(context.Background(), "t")
	require.Equal(t, 2, b.Subscribers("t"))

	require.NoError(t, s1.Close())
	require.NoError(t, s1.Close(), "double close is safe")
	require.Equal(t, 1, b.Subscribers("t"))

	b.CloseTopic("t")
	_, open := <-s2.C()
	require.False(t, open)
	require.NoError(t, s2.Close(), "close after CloseTopic is safe")
	require.Equal(t, 0, b.Subscribers("t"))
}
