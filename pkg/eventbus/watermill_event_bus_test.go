package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/chatflow-dev/chatflow/pkg/channels/gochannel"
	"github.com/chatflow-dev/chatflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillEventBus_PublishAndSubscribe(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	defer bus.Close()

	received := make(chan *events.WorkflowExecutionStarted, 1)

	err = bus.Handle(events.WorkflowExecutionStartedEvent, func(_ context.Context, event interface{}) error {
		started, ok := event.(*events.WorkflowExecutionStarted)
		require.True(t, ok)
		received <- started

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.WorkflowExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.WorkflowExecutionStartedEvent, "wf-1"),
		ExecutionID: "exec-1",
		ChannelID:   "town-square",
	}
	require.NoError(t, bus.Publish(ctx, "wf-1", event))

	select {
	case got := <-received:
		assert.Equal(t, "exec-1", got.ExecutionID)
		assert.Equal(t, "wf-1", got.WorkflowID)
		assert.Equal(t, "town-square", got.ChannelID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledEventTypeIsAcked(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.NodeExecutionFinished{
		BaseEvent:   events.NewBaseEvent(events.NodeExecutionFinishedEvent, "wf-1"),
		ExecutionID: "exec-1",
		NodeID:      "n1",
	}

	// No handler registered: publish must still succeed and not block.
	require.NoError(t, bus.Publish(ctx, "wf-1", event))
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	defer bus.Close()

	assert.NotEqual(t, bus.GenerateID(), bus.GenerateID())
}
