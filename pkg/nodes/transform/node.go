// Package transform provides the transform node handler: a single AI
// completion whose textual result is parsed back into structured data.
package transform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
	"github.com/chatflow-dev/chatflow/pkg/template"
)

const defaultPrompt = "Transform this data: {{ json .data }}"

// Node implements protocol.NodeHandler for transform nodes.
type Node struct {
	id     string
	prompt string
	ai     protocol.AIClient
}

// NewNode creates a transform node handler.
func NewNode(id string, config map[string]any, ai protocol.AIClient) (*Node, error) {
	prompt := defaultPrompt
	if p, ok := config["prompt"].(string); ok && p != "" {
		prompt = p
	}

	return &Node{
		id:     id,
		prompt: prompt,
		ai:     ai,
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() models.NodeType {
	return models.NodeTypeTransform
}

// Execute renders the prompt, requests a completion and parses the result
// as JSON. An object becomes the payload directly, any other JSON value is
// wrapped under "result", and non-JSON text keeps the raw completion under
// "transformed_data". An AI-call failure is folded into the payload as an
// error value and the walk continues.
func (n *Node) Execute(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) (protocol.NodeResult, error) {
	prompt, err := template.Render(n.prompt, payload)
	if err != nil {
		return protocol.NodeResult{}, fmt.Errorf("failed to render transform prompt: %w", err)
	}

	result, err := n.ai.Complete(ctx, prompt)
	if err != nil {
		execCtx.Logger.Warn("transform completion failed", "node_id", n.id, "error", err)

		return protocol.NodeResult{Payload: map[string]any{"error": err.Error()}}, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(result), &parsed); err == nil {
		if structured, ok := parsed.(map[string]any); ok {
			return protocol.NodeResult{Payload: structured}, nil
		}

		return protocol.NodeResult{Payload: map[string]any{"result": parsed}}, nil
	}

	return protocol.NodeResult{
		Payload: map[string]any{
			"transformed_data": result,
			"original_data":    payload,
		},
	}, nil
}
