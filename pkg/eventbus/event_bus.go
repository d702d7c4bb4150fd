// Package eventbus carries execution lifecycle events (run started, node
// finished, run completed or failed) and inbound chat messages between the
// engine, the API and the bot daemon.
package eventbus

import (
	"context"

	"github.com/chatflow-dev/chatflow/pkg/events"
)

// Event is anything routable by its event type. All concrete events live in
// pkg/events.
type Event interface {
	GetType() events.EventType
}

// EventPublisher is the write side of the bus. The engine and the chat
// poller only need this half.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber registers handlers per event type and then consumes.
// Handle must be called before Subscribe; the bot daemon is the main
// consumer.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler processes one decoded event. The event is a pointer to the
// concrete type registered for the event type.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
