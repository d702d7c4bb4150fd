// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/chatflow-dev/chatflow/pkg/channels/gochannel"
	"github.com/chatflow-dev/chatflow/pkg/channels/kafka"
	"github.com/chatflow-dev/chatflow/pkg/eventbus"
)

// NewEventBus creates an event bus instance based on the provider. "kafka"
// connects to the brokers listed in KAFKA_BROKERS; "gochannel" keeps events
// in-process, which is enough for single-binary deployments.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "chatflow")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	case "gochannel":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create in-memory pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
