package output

import (
	"net/http"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Factory creates output node handlers with the injected notifier and a
// shared HTTP client for webhook delivery.
type Factory struct {
	notifier protocol.Notifier
	client   *http.Client
}

// NewFactory creates a new factory instance.
func NewFactory(notifier protocol.Notifier, client *http.Client) *Factory {
	return &Factory{notifier: notifier, client: client}
}

// Create creates a new output handler for the given node.
func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewNode(node.ID, node.Config, f.notifier, f.client)
}

// Type returns the node type this factory handles.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeOutput
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Delivers the payload as a chat message or a webhook POST."
}

// Schema returns the JSON schema for output node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"output_type": map[string]any{
				"type":        "string",
				"enum":        []string{OutputTypeChat, OutputTypeWebhook},
				"description": "Delivery target, defaults to chat.",
			},
			"message_template": map[string]any{
				"type":        "string",
				"description": "Message template for chat outputs. The payload is available as '.data'.",
			},
			"webhook_url": map[string]any{
				"type":        "string",
				"description": "Target URL for webhook outputs.",
			},
		},
	}
}
