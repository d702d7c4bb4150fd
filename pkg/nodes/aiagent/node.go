// Package aiagent provides the ai_agent node handler: an agent run with
// tool access whose progress is mirrored into the notification channel.
package aiagent

import (
	"context"
	"fmt"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
	"github.com/chatflow-dev/chatflow/pkg/template"
)

const defaultPrompt = "Process this data: {{ json .data }}"

// Node implements protocol.NodeHandler for ai_agent nodes.
type Node struct {
	id       string
	prompt   string
	ai       protocol.AIClient
	notifier protocol.Notifier
}

// NewNode creates an ai_agent node handler.
func NewNode(id string, config map[string]any, ai protocol.AIClient, notifier protocol.Notifier) (*Node, error) {
	prompt := defaultPrompt
	if p, ok := config["prompt"].(string); ok && p != "" {
		prompt = p
	}

	return &Node{
		id:       id,
		prompt:   prompt,
		ai:       ai,
		notifier: notifier,
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() models.NodeType {
	return models.NodeTypeAIAgent
}

// Execute renders the prompt with the payload and runs the agent. Unlike
// action and transform nodes, an agent failure fails the whole execution.
// The payload becomes {ai_result, original_data}.
func (n *Node) Execute(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) (protocol.NodeResult, error) {
	prompt, err := template.Render(n.prompt, payload)
	if err != nil {
		return protocol.NodeResult{}, fmt.Errorf("failed to render agent prompt: %w", err)
	}

	result, err := n.ai.RunAgent(ctx, prompt, n.progressCallback(ctx, execCtx))
	if err != nil {
		return protocol.NodeResult{}, fmt.Errorf("agent run failed: %w", err)
	}

	return protocol.NodeResult{
		Payload: map[string]any{
			"ai_result":     result,
			"original_data": payload,
		},
	}, nil
}

// progressCallback mirrors agent progress into the run's notification
// channel. Delivery failures are logged and never interrupt the run.
func (n *Node) progressCallback(ctx context.Context, execCtx models.ExecutionContext) protocol.AgentProgress {
	if n.notifier == nil || execCtx.ChannelID == "" {
		return nil
	}

	return func(message string) {
		err := n.notifier.Post(ctx, execCtx.ChannelID, fmt.Sprintf("**Workflow update**: %s", message))
		if err != nil {
			execCtx.Logger.Warn("failed to post agent progress", "node_id", n.id, "error", err)
		}
	}
}
