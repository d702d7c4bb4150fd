package main

import (
	"context"
	"log/slog"

	"github.com/chatflow-dev/chatflow/pkg/eventbus"
	"github.com/chatflow-dev/chatflow/pkg/events"
	"github.com/chatflow-dev/chatflow/pkg/nodes/trigger"
	"github.com/chatflow-dev/chatflow/pkg/persistence"
	"github.com/chatflow-dev/chatflow/pkg/workflow"
)

// BotManager consumes chat message events and dispatches matching workflows
// to the executor.
type BotManager struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	executor    *workflow.Executor
	eventBus    eventbus.EventBus
	matcher     *workflow.TriggerMatcher
}

func NewBotManager(
	id string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	executor *workflow.Executor,
	logger *slog.Logger,
) *BotManager {
	botLogger := logger.With("module", "chatflow-bot", "bot_id", id)

	return &BotManager{
		id:          id,
		logger:      botLogger,
		persistence: persistence,
		executor:    executor,
		eventBus:    eventBus,
		matcher:     workflow.NewTriggerMatcher(botLogger),
	}
}

// Start subscribes to chat message events and blocks until the context is
// cancelled.
func (b *BotManager) Start(ctx context.Context) error {
	b.logger.InfoContext(ctx, "Starting bot manager", "bot_id", b.id)

	err := b.eventBus.Handle(events.ChatMessageReceivedEvent, b.handleChatMessage)
	if err != nil {
		return err
	}

	err = b.eventBus.Subscribe(ctx)
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	b.logger.InfoContext(ctx, "Bot started successfully")

	<-ctx.Done()
	b.logger.Info("Shutting down bot...")

	return nil
}

func (b *BotManager) handleChatMessage(ctx context.Context, event any) error {
	message, ok := event.(*events.ChatMessageReceived)
	if !ok {
		b.logger.ErrorContext(ctx, "Invalid event type for ChatMessageReceived")

		return nil
	}

	logger := b.logger.With(
		"channel_id", message.ChannelID,
		"post_id", message.PostID,
	)
	logger.InfoContext(ctx, "Processing chat message")

	workflows, err := b.persistence.Workflows(ctx, "")
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load workflows", "error", err)

		return err
	}

	matches := b.matcher.MatchChatMessage(*message, workflows)

	for _, match := range matches {
		triggerData := map[string]any{
			"trigger_type": trigger.TriggerTypeChatMessage,
			"channel_id":   message.ChannelID,
			"user_id":      message.UserID,
			"text":         message.Text,
			"post_id":      message.PostID,
		}

		executionID := b.executor.Start(match.Workflow, triggerData, message.ChannelID)
		logger.InfoContext(ctx, "Workflow execution started",
			"workflow_id", match.Workflow.ID,
			"execution_id", executionID,
		)
	}

	return nil
}
