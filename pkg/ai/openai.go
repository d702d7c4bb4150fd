// Package ai provides an OpenAI-compatible chat completion client
// implementing the AI capability used by agent and transform nodes.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

const defaultModel = "gpt-4o-mini"

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, apiKey, model string, client *http.Client, logger *slog.Logger) *Client {
	if model == "" {
		model = defaultModel
	}

	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  client,
		logger:  logger.With("module", "ai_client"),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a single-prompt completion request and returns the model's
// reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return "", fmt.Errorf("completion endpoint returned status %d: %s", resp.StatusCode, string(data))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("completion error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}

	return response.Choices[0].Message.Content, nil
}

// RunAgent runs a prompt as an agent task, reporting coarse progress through
// the callback. The callback may be nil.
func (c *Client) RunAgent(ctx context.Context, prompt string, progress protocol.AgentProgress) (string, error) {
	report := func(message string) {
		if progress != nil {
			progress(message)
		}
	}

	report("Starting AI agent task...")

	result, err := c.Complete(ctx, prompt)
	if err != nil {
		report(fmt.Sprintf("Agent task failed: %s", err))

		return "", err
	}

	report("Agent task completed")

	return result, nil
}
