package models

// NodeType represents the behavioral type of a workflow node.
type NodeType string

const (
	NodeTypeTrigger   NodeType = "trigger"   // Entry point, never dispatched as a body node
	NodeTypeAction    NodeType = "action"    // http_request / data_transform subtypes
	NodeTypeCondition NodeType = "condition" // Boolean gate, can halt traversal
	NodeTypeAIAgent   NodeType = "ai_agent"  // Agent run with tool access and progress callbacks
	NodeTypeTransform NodeType = "transform" // Single AI completion with structured-output parsing
	NodeTypeOutput    NodeType = "output"    // Terminal side effect: chat message or webhook POST
)

// WorkflowNode represents one typed step in a workflow graph.
//
// Config is an open key-value bag whose shape depends on Type (and, for
// action and output nodes, on a subtype key inside it). Connections lists
// successor node ids in traversal order; ids that reference no node in the
// same workflow are tolerated and skipped at traversal time.
type WorkflowNode struct {
	ID          string         `json:"id"          validate:"required"`
	Type        NodeType       `json:"type"        validate:"required"`
	Name        string         `json:"name"        validate:"required,min=1"`
	Config      map[string]any `json:"config"`
	PositionX   int            `json:"position_x"`
	PositionY   int            `json:"position_y"`
	Connections []string       `json:"connections"`
}

// IsTrigger reports whether the node is a trigger node.
func (n *WorkflowNode) IsTrigger() bool {
	return n.Type == NodeTypeTrigger
}

// ConfigString returns a string config value, or the fallback when the key
// is absent or not a string.
func (n *WorkflowNode) ConfigString(key, fallback string) string {
	if v, ok := n.Config[key].(string); ok {
		return v
	}

	return fallback
}
