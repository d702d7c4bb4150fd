// Package protocol defines the interfaces and contracts between the
// execution engine, node handlers and external capabilities.
package protocol

import (
	"context"

	"github.com/chatflow-dev/chatflow/pkg/models"
)

// NodeResult is the outcome of dispatching one node.
type NodeResult struct {
	// Payload replaces the threaded payload for the rest of the walk.
	Payload map[string]any

	// Halt stops traversal after this node. Only condition handlers set it.
	Halt bool
}

// NodeHandler executes one typed workflow node against the current payload.
//
// Handlers are pure with respect to the engine: all state is the payload,
// the node configuration captured at construction, and the capabilities
// injected through the factory. Node-local failures (HTTP errors, AI-call
// errors, expression failures inside an action) must be folded into the
// returned payload, not returned as an error; a returned error is treated
// as a configuration failure and fails the whole execution.
type NodeHandler interface {
	ID() string
	Type() models.NodeType
	Execute(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) (NodeResult, error)
}

// NodeFactory creates handler instances for one node type and describes the
// expected configuration shape.
type NodeFactory interface {
	// Create builds a handler for a concrete node instance. Configuration
	// errors (missing required keys, wrong types) are returned here.
	Create(node *models.WorkflowNode) (NodeHandler, error)

	// Type returns the node type this factory handles.
	Type() models.NodeType

	// Schema returns the JSON schema for this node type's configuration.
	Schema() map[string]any

	// Description returns a human-readable description of the node type.
	Description() string
}
