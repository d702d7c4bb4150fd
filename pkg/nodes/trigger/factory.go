package trigger

import (
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Factory creates trigger node handlers.
type Factory struct{}

// NewFactory creates a new factory instance.
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a new trigger handler for the given node.
func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewNode(node.ID), nil
}

// Type returns the node type this factory handles.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeTrigger
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Marks the workflow entry point and describes what starts a run."
}

// Schema returns the JSON schema for trigger node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"trigger_type": map[string]any{
				"type":        "string",
				"enum":        []string{TriggerTypeWebhook, TriggerTypeChatMessage, TriggerTypeSchedule},
				"description": "What starts a run of this workflow.",
			},
			"channels": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Channel IDs a chat_message trigger listens on. Empty means all channels.",
			},
			"keywords": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Keywords a chat_message trigger matches against, case-insensitive. Empty means any message.",
			},
			"cron": map[string]any{
				"type":        "string",
				"description": "Cron expression for schedule triggers.",
			},
		},
	}
}
