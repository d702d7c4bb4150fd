package workflow

import (
	"log/slog"
	"testing"

	"github.com/chatflow-dev/chatflow/pkg/events"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatWorkflow(id string, status models.WorkflowStatus, config map[string]any) *models.Workflow {
	return &models.Workflow{
		ID:     id,
		Name:   id,
		Status: status,
		Nodes: []*models.WorkflowNode{
			{ID: "start", Type: models.NodeTypeTrigger, Config: config},
		},
	}
}

func chatEvent(channelID, text string) events.ChatMessageReceived {
	return events.ChatMessageReceived{
		BaseEvent: events.NewBaseEvent(events.ChatMessageReceivedEvent, ""),
		ChannelID: channelID,
		UserID:    "user-1",
		Text:      text,
	}
}

func TestTriggerMatcher_KeywordAndChannel(t *testing.T) {
	matcher := NewTriggerMatcher(slog.Default())

	workflows := []*models.Workflow{
		chatWorkflow("wf-deploy", models.WorkflowStatusActive, map[string]any{
			"trigger_type": "chat_message",
			"channels":     []any{"ops"},
			"keywords":     []any{"deploy"},
		}),
		chatWorkflow("wf-anywhere", models.WorkflowStatusActive, map[string]any{
			"trigger_type": "chat_message",
			"keywords":     []any{"incident"},
		}),
	}

	results := matcher.MatchChatMessage(chatEvent("ops", "please DEPLOY the api"), workflows)
	require.Len(t, results, 1)
	assert.Equal(t, "wf-deploy", results[0].Workflow.ID)

	results = matcher.MatchChatMessage(chatEvent("random", "new incident opened"), workflows)
	require.Len(t, results, 1)
	assert.Equal(t, "wf-anywhere", results[0].Workflow.ID)

	results = matcher.MatchChatMessage(chatEvent("random", "deploy it"), workflows)
	assert.Empty(t, results, "channel filter must exclude other channels")
}

func TestTriggerMatcher_EmptyFiltersMatchEverything(t *testing.T) {
	matcher := NewTriggerMatcher(slog.Default())

	workflows := []*models.Workflow{
		chatWorkflow("wf-all", models.WorkflowStatusActive, map[string]any{
			"trigger_type": "chat_message",
		}),
	}

	results := matcher.MatchChatMessage(chatEvent("anywhere", "anything at all"), workflows)
	require.Len(t, results, 1)
	assert.Equal(t, "wf-all", results[0].Workflow.ID)
}

func TestTriggerMatcher_SkipsInactiveAndNonChatTriggers(t *testing.T) {
	matcher := NewTriggerMatcher(slog.Default())

	workflows := []*models.Workflow{
		chatWorkflow("wf-paused", models.WorkflowStatusPaused, map[string]any{
			"trigger_type": "chat_message",
		}),
		chatWorkflow("wf-webhook", models.WorkflowStatusActive, map[string]any{
			"trigger_type": "webhook",
		}),
		{ID: "wf-headless", Status: models.WorkflowStatusActive},
	}

	results := matcher.MatchChatMessage(chatEvent("ops", "hello"), workflows)
	assert.Empty(t, results)
}

func TestTriggerMatcher_WorkflowLevelConfigFallback(t *testing.T) {
	matcher := NewTriggerMatcher(slog.Default())

	wf := &models.Workflow{
		ID:     "wf-merged",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			{ID: "start", Type: models.NodeTypeTrigger, Config: map[string]any{}},
		},
		TriggerConfig: map[string]any{
			"trigger_type": "chat_message",
			"keywords":     []any{"report"},
		},
	}

	results := matcher.MatchChatMessage(chatEvent("ops", "weekly report please"), []*models.Workflow{wf})
	require.Len(t, results, 1)
	assert.Equal(t, "wf-merged", results[0].Workflow.ID)
}
