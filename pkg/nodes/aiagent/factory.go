package aiagent

import (
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Factory creates ai_agent node handlers with the injected AI and notifier
// capabilities.
type Factory struct {
	ai       protocol.AIClient
	notifier protocol.Notifier
}

// NewFactory creates a new factory instance.
func NewFactory(ai protocol.AIClient, notifier protocol.Notifier) *Factory {
	return &Factory{ai: ai, notifier: notifier}
}

// Create creates a new ai_agent handler for the given node.
func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewNode(node.ID, node.Config, f.ai, f.notifier)
}

// Type returns the node type this factory handles.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeAIAgent
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Runs an AI agent with tool access over the payload, reporting progress to the notification channel."
}

// Schema returns the JSON schema for ai_agent node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "Prompt template. The payload is available as '.data'; use the 'json' helper to inline it.",
				"examples": []string{
					"Summarize this event: {{ json .data }}",
				},
			},
		},
	}
}
