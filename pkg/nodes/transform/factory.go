package transform

import (
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Factory creates transform node handlers with the injected AI capability.
type Factory struct {
	ai protocol.AIClient
}

// NewFactory creates a new factory instance.
func NewFactory(ai protocol.AIClient) *Factory {
	return &Factory{ai: ai}
}

// Create creates a new transform handler for the given node.
func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewNode(node.ID, node.Config, f.ai)
}

// Type returns the node type this factory handles.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeTransform
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Transforms the payload with a single AI completion, parsing the result as JSON when possible."
}

// Schema returns the JSON schema for transform node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "Prompt template. The payload is available as '.data'; use the 'json' helper to inline it.",
				"examples": []string{
					"Extract name and email as JSON from: {{ json .data }}",
				},
			},
		},
	}
}
