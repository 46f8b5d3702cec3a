// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bus is the in-process pub/sub that carries player output (lifecycle
// events and surface commands) from a session's loop to its subscribers.
package bus

import "context"

// Message is any payload published on a topic.
type Message = any

// Subscriber receives messages of one topic until closed.
type Subscriber interface {
	C() <-chan Message
	Close() error
}

// Bus publishes messages to topic subscribers.
type Bus interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string) (Subscriber, error)
}
