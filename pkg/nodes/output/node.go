// Package output provides the output node handler, a terminal side effect:
// a chat message to the run's notification channel or a webhook POST.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
	"github.com/chatflow-dev/chatflow/pkg/template"
)

const (
	OutputTypeChat    = "chat"
	OutputTypeWebhook = "webhook"

	defaultMessageTemplate = "Workflow completed: {{ json .data }}"
)

// Node implements protocol.NodeHandler for output nodes.
type Node struct {
	id       string
	config   Config
	notifier protocol.Notifier
	client   *http.Client
}

// Config defines the configuration for output nodes.
type Config struct {
	OutputType      string `json:"output_type"`
	MessageTemplate string `json:"message_template"`
	WebhookURL      string `json:"webhook_url"`
}

// NewNode creates an output node handler.
func NewNode(id string, config map[string]any, notifier protocol.Notifier, client *http.Client) (*Node, error) {
	cfg := Config{
		OutputType:      OutputTypeChat,
		MessageTemplate: defaultMessageTemplate,
	}

	if outputType, ok := config["output_type"].(string); ok && outputType != "" {
		cfg.OutputType = outputType
	}

	if tmpl, ok := config["message_template"].(string); ok && tmpl != "" {
		cfg.MessageTemplate = tmpl
	}

	if url, ok := config["webhook_url"].(string); ok {
		cfg.WebhookURL = url
	}

	if cfg.OutputType == OutputTypeWebhook && cfg.WebhookURL == "" {
		return nil, errors.New("webhook output requires field 'webhook_url'")
	}

	return &Node{
		id:       id,
		config:   cfg,
		notifier: notifier,
		client:   client,
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() models.NodeType {
	return models.NodeTypeOutput
}

// Execute delivers the payload and passes it through unchanged. Delivery
// failures are logged only; traversal may continue past an output node.
func (n *Node) Execute(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) (protocol.NodeResult, error) {
	switch n.config.OutputType {
	case OutputTypeChat:
		n.postMessage(ctx, execCtx, payload)
	case OutputTypeWebhook:
		n.postWebhook(ctx, execCtx, payload)
	default:
		execCtx.Logger.Warn("unknown output type, skipping delivery", "node_id", n.id, "output_type", n.config.OutputType)
	}

	return protocol.NodeResult{Payload: payload}, nil
}

func (n *Node) postMessage(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) {
	if execCtx.ChannelID == "" {
		execCtx.Logger.Debug("no notification channel for run, skipping chat output", "node_id", n.id)

		return
	}

	message, err := template.Render(n.config.MessageTemplate, payload)
	if err != nil {
		execCtx.Logger.Warn("failed to render output message", "node_id", n.id, "error", err)

		return
	}

	if err := n.notifier.Post(ctx, execCtx.ChannelID, message); err != nil {
		execCtx.Logger.Warn("failed to post output message", "node_id", n.id, "channel_id", execCtx.ChannelID, "error", err)
	}
}

func (n *Node) postWebhook(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		execCtx.Logger.Warn("failed to marshal payload for webhook output", "node_id", n.id, "error", err)

		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		execCtx.Logger.Warn("failed to build webhook request", "node_id", n.id, "error", err)

		return
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		execCtx.Logger.Warn("webhook output delivery failed", "node_id", n.id, "url", n.config.WebhookURL, "error", err)

		return
	}

	_ = resp.Body.Close()
}
