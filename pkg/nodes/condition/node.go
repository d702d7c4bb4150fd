// Package condition provides the condition node handler, the only node type
// that can halt traversal.
package condition

import (
	"context"
	"errors"

	"github.com/chatflow-dev/chatflow/pkg/expression"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Node implements protocol.NodeHandler for condition nodes.
type Node struct {
	id        string
	condition string
	evaluator *expression.Evaluator
}

// NewNode creates a condition node handler.
func NewNode(id string, config map[string]any, evaluator *expression.Evaluator) (*Node, error) {
	condition, ok := config["condition"].(string)
	if !ok || condition == "" {
		return nil, errors.New("missing required field 'condition'")
	}

	return &Node{
		id:        id,
		condition: condition,
		evaluator: evaluator,
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() models.NodeType {
	return models.NodeTypeCondition
}

// Execute evaluates the condition against the payload. A false result halts
// traversal; an evaluation failure is treated identically to false and is
// logged, never surfaced as an execution error. The payload passes through
// unchanged either way.
func (n *Node) Execute(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) (protocol.NodeResult, error) {
	result, err := n.evaluator.Bool(n.condition, payload)
	if err != nil {
		execCtx.Logger.Warn("condition evaluation failed, halting traversal",
			"node_id", n.id, "condition", n.condition, "error", err)

		return protocol.NodeResult{Payload: payload, Halt: true}, nil
	}

	return protocol.NodeResult{Payload: payload, Halt: !result}, nil
}
