// Package trigger provides the trigger node handler. Trigger nodes mark the
// entry point of a workflow; the engine never executes them as steps, so the
// handler only exists to validate configuration and pass data through.
package trigger

import (
	"context"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

const (
	TriggerTypeWebhook     = "webhook"
	TriggerTypeChatMessage = "chat_message"
	TriggerTypeSchedule    = "schedule"
)

// Node implements protocol.NodeHandler for trigger nodes.
type Node struct {
	id string
}

// NewNode creates a trigger node handler.
func NewNode(id string) *Node {
	return &Node{id: id}
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() models.NodeType {
	return models.NodeTypeTrigger
}

// Execute passes the payload through unchanged.
func (n *Node) Execute(_ context.Context, _ models.ExecutionContext, payload map[string]any) (protocol.NodeResult, error) {
	return protocol.NodeResult{Payload: payload}, nil
}
