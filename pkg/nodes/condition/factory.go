package condition

import (
	"github.com/chatflow-dev/chatflow/pkg/expression"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Factory creates condition node handlers sharing one expression evaluator.
type Factory struct {
	evaluator *expression.Evaluator
}

// NewFactory creates a new factory instance.
func NewFactory(evaluator *expression.Evaluator) *Factory {
	return &Factory{evaluator: evaluator}
}

// Create creates a new condition handler for the given node.
func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeHandler, error) {
	return NewNode(node.ID, node.Config, f.evaluator)
}

// Type returns the node type this factory handles.
func (f *Factory) Type() models.NodeType {
	return models.NodeTypeCondition
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Evaluates a boolean expression against the payload and halts the run when it is false."
}

// Schema returns the JSON schema for condition node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"condition": map[string]any{
				"type":        "string",
				"description": "Boolean expression over the payload, available as 'data'.",
				"examples": []string{
					`data.status == "active"`,
					`data.count > 10`,
					`data.user.verified && data.score >= 75`,
				},
			},
		},
		"required": []string{"condition"},
	}
}
