// Package action provides the action node handler. Actions either issue an
// outbound HTTP request with the payload as body, or transform the payload
// with a sandboxed expression.
package action

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chatflow-dev/chatflow/pkg/expression"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

const (
	SubtypeHTTPRequest   = "http_request"
	SubtypeDataTransform = "data_transform"
)

// Node implements protocol.NodeHandler for action nodes.
type Node struct {
	id        string
	config    Config
	client    *http.Client
	evaluator *expression.Evaluator
}

// Config defines the configuration for action nodes. Which fields apply
// depends on ActionType.
type Config struct {
	ActionType string            `json:"action_type"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers"`
	Expression string            `json:"expression"`
}

// NewNode creates an action node handler from raw node configuration.
func NewNode(id string, config map[string]any, client *http.Client, evaluator *expression.Evaluator) (*Node, error) {
	cfg := Config{
		Method:  http.MethodGet,
		Headers: make(map[string]string),
	}

	if actionType, ok := config["action_type"].(string); ok {
		cfg.ActionType = actionType
	}

	if url, ok := config["url"].(string); ok {
		cfg.URL = url
	}

	if method, ok := config["method"].(string); ok {
		cfg.Method = strings.ToUpper(method)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if strVal, ok := v.(string); ok {
				cfg.Headers[k] = strVal
			}
		}
	}

	if expr, ok := config["expression"].(string); ok {
		cfg.Expression = expr
	}

	switch cfg.ActionType {
	case SubtypeHTTPRequest:
		if cfg.URL == "" {
			return nil, errors.New("http_request action requires field 'url'")
		}
	case SubtypeDataTransform:
		if cfg.Expression == "" {
			return nil, errors.New("data_transform action requires field 'expression'")
		}
	}

	return &Node{
		id:        id,
		config:    cfg,
		client:    client,
		evaluator: evaluator,
	}, nil
}

// ID returns the node ID.
func (n *Node) ID() string {
	return n.id
}

// Type returns the node type.
func (n *Node) Type() models.NodeType {
	return models.NodeTypeAction
}

// Execute runs the configured action subtype. Failures are local: they are
// folded into the payload as an "error" value and the walk continues.
// Unknown subtypes pass the payload through untouched.
func (n *Node) Execute(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) (protocol.NodeResult, error) {
	switch n.config.ActionType {
	case SubtypeHTTPRequest:
		return protocol.NodeResult{Payload: n.executeHTTPRequest(ctx, execCtx, payload)}, nil
	case SubtypeDataTransform:
		return protocol.NodeResult{Payload: n.executeDataTransform(execCtx, payload)}, nil
	default:
		return protocol.NodeResult{Payload: payload}, nil
	}
}

func (n *Node) executeHTTPRequest(ctx context.Context, execCtx models.ExecutionContext, payload map[string]any) map[string]any {
	body, err := json.Marshal(payload)
	if err != nil {
		return errorPayload(fmt.Errorf("failed to marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, n.config.Method, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return errorPayload(err)
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range n.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		execCtx.Logger.Warn("HTTP request action failed", "node_id", n.id, "url", n.config.URL, "error", err)

		return errorPayload(err)
	}

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorPayload(err)
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		// Non-JSON responses are kept as raw text.
		result = string(respBody)
	}

	return map[string]any{
		"http_result": result,
		"status_code": resp.StatusCode,
	}
}

func (n *Node) executeDataTransform(execCtx models.ExecutionContext, payload map[string]any) map[string]any {
	result, err := n.evaluator.Eval(n.config.Expression, payload)
	if err != nil {
		execCtx.Logger.Warn("data transform action failed", "node_id", n.id, "error", err)

		return errorPayload(err)
	}

	if m, ok := result.(map[string]any); ok {
		return m
	}

	// Scalar and list results are wrapped so the payload stays a mapping.
	return map[string]any{"result": result}
}

func errorPayload(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}
