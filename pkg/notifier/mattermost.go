// Package notifier provides the Mattermost implementation of the chat
// notifier capability.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Mattermost posts and searches messages through the Mattermost REST API.
type Mattermost struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

func NewMattermost(baseURL, token string, client *http.Client, logger *slog.Logger) *Mattermost {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Mattermost{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
		logger:  logger.With("module", "mattermost_notifier"),
	}
}

// Post creates a post in the given channel.
func (m *Mattermost) Post(ctx context.Context, channelID, message string) error {
	body := map[string]any{
		"channel_id": channelID,
		"message":    message,
	}

	var response struct {
		ID string `json:"id"`
	}

	if err := m.do(ctx, http.MethodPost, "/api/v4/posts", body, &response); err != nil {
		return fmt.Errorf("failed to post to channel %s: %w", channelID, err)
	}

	m.logger.Debug("Posted message", "channel_id", channelID, "post_id", response.ID)

	return nil
}

// Search finds posts matching the given terms.
func (m *Mattermost) Search(ctx context.Context, terms string) ([]protocol.Message, error) {
	body := map[string]any{
		"terms":       terms,
		"is_or_search": false,
	}

	var response struct {
		Order []string `json:"order"`
		Posts map[string]struct {
			ID        string `json:"id"`
			ChannelID string `json:"channel_id"`
			UserID    string `json:"user_id"`
			Message   string `json:"message"`
			CreateAt  int64  `json:"create_at"`
		} `json:"posts"`
	}

	if err := m.do(ctx, http.MethodPost, "/api/v4/posts/search", body, &response); err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	messages := make([]protocol.Message, 0, len(response.Order))

	for _, postID := range response.Order {
		post, ok := response.Posts[postID]
		if !ok {
			continue
		}

		messages = append(messages, protocol.Message{
			PostID:    postID,
			ChannelID: post.ChannelID,
			UserID:    post.UserID,
			Text:      post.Message,
			CreatedAt: time.UnixMilli(post.CreateAt).UTC(),
		})
	}

	return messages, nil
}

func (m *Mattermost) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.token)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return fmt.Errorf("mattermost returned status %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
