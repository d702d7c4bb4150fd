package action

import (
	"net/http"

	"github.com/chatflow-dev/chatflow/pkg/expression"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Factory creates action node handlers with a shared HTTP client and
// expression evaluator.
type Factory struct {
	client    *http.Client
	evaluator *expression.Evaluator
}

// NewFactory creates a new factory instance.
func NewFactory(client *http.Client, evaluator *expression.Evaluator) *Factory {
	return &Factory{client: client, evaluator: evaluator}
}

// Create creates a new action handler for the given node.
func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewNode(node.ID, node.Config, f.client, f.evaluator)
}

// Type returns the node type this factory handles.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeAction
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Performs an outbound HTTP request or a sandboxed payload transformation."
}

// Schema returns the JSON schema for action node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action_type": map[string]any{
				"type":        "string",
				"enum":        []string{SubtypeHTTPRequest, SubtypeDataTransform},
				"description": "Action subtype to run.",
			},
			"url": map[string]any{
				"type":        "string",
				"description": "Target URL for http_request actions.",
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method, defaults to GET.",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Extra request headers for http_request actions.",
			},
			"expression": map[string]any{
				"type":        "string",
				"description": "Payload expression for data_transform actions. The payload is available as 'data'.",
				"examples": []string{
					`{"total": data.a + data.b}`,
					`data.items`,
				},
			},
		},
		"required": []string{"action_type"},
	}
}
