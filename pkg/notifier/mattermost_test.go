package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMattermost_Post(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "post-1"})
	}))
	defer server.Close()

	m := NewMattermost(server.URL, "token-123", server.Client(), slog.Default())

	err := m.Post(context.Background(), "town-square", "hello there")
	require.NoError(t, err)

	assert.Equal(t, "/api/v4/posts", gotPath)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "town-square", gotBody["channel_id"])
	assert.Equal(t, "hello there", gotBody["message"])
}

func TestMattermost_PostServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "channel archived"}`, http.StatusForbidden)
	}))
	defer server.Close()

	m := NewMattermost(server.URL, "token-123", server.Client(), slog.Default())

	err := m.Post(context.Background(), "town-square", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestMattermost_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/posts/search", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"order": []string{"p2", "p1"},
			"posts": map[string]any{
				"p1": map[string]any{
					"id": "p1", "channel_id": "ops", "user_id": "u1",
					"message": "older match", "create_at": 1700000000000,
				},
				"p2": map[string]any{
					"id": "p2", "channel_id": "ops", "user_id": "u2",
					"message": "newer match", "create_at": 1700000100000,
				},
			},
		})
	}))
	defer server.Close()

	m := NewMattermost(server.URL, "token-123", server.Client(), slog.Default())

	messages, err := m.Search(context.Background(), "match")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "newer match", messages[0].Text, "results must follow the server's order")
	assert.Equal(t, "u2", messages[0].UserID)
	assert.Equal(t, "older match", messages[1].Text)
}
