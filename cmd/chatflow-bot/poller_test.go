package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/eventbus"
	"github.com/chatflow-dev/chatflow/pkg/events"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/notifier"
	"github.com/chatflow-dev/chatflow/pkg/persistence/file"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

func (r *recordingPublisher) all() []eventbus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]eventbus.Event(nil), r.events...)
}

type searchPost struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	CreateAt  int64  `json:"create_at"`
}

// searchServer serves /api/v4/posts/search from a mutable post list.
type searchServer struct {
	mu    sync.Mutex
	posts []searchPost
}

func (s *searchServer) add(post searchPost) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append(s.posts, post)
}

func (s *searchServer) handler(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v4/posts/search", r.URL.Path)

		s.mu.Lock()
		defer s.mu.Unlock()

		order := make([]string, 0, len(s.posts))
		posts := make(map[string]searchPost, len(s.posts))

		for _, post := range s.posts {
			order = append(order, post.ID)
			posts[post.ID] = post
		}

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]any{
			"order": order,
			"posts": posts,
		})
		require.NoError(t, err)
	})
}

func TestPoller_PublishesOnlyNewPosts(t *testing.T) {
	persistence, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, persistence.SaveWorkflow(ctx, chatWorkflow("wf-alert", "alert", models.WorkflowStatusActive)))

	backlog := &searchServer{}
	backlog.add(searchPost{
		ID:        "post-old",
		ChannelID: "alerts",
		UserID:    "user-1",
		Message:   "old alert",
		CreateAt:  time.Now().Add(-time.Hour).UnixMilli(),
	})

	server := httptest.NewServer(backlog.handler(t))
	defer server.Close()

	chat := notifier.NewMattermost(server.URL, "token", server.Client(), slog.Default())
	publisher := &recordingPublisher{}
	poller := NewPoller(persistence, chat, publisher, time.Second, slog.Default())

	// The first poll primes the seen set without publishing.
	poller.poll(ctx)
	assert.Empty(t, publisher.all())

	// Nothing new, nothing published.
	poller.poll(ctx)
	assert.Empty(t, publisher.all())

	backlog.add(searchPost{
		ID:        "post-new",
		ChannelID: "alerts",
		UserID:    "user-2",
		Message:   "fresh alert",
		CreateAt:  time.Now().UnixMilli(),
	})

	poller.poll(ctx)

	published := publisher.all()
	require.Len(t, published, 1)

	message, ok := published[0].(events.ChatMessageReceived)
	require.True(t, ok)
	assert.Equal(t, "post-new", message.PostID)
	assert.Equal(t, "alerts", message.ChannelID)
	assert.Equal(t, "fresh alert", message.Text)
}

func TestPoller_SearchFailureIsNonFatal(t *testing.T) {
	persistence, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, persistence.SaveWorkflow(ctx, chatWorkflow("wf-alert", "alert", models.WorkflowStatusActive)))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	chat := notifier.NewMattermost(server.URL, "token", server.Client(), slog.Default())
	publisher := &recordingPublisher{}
	poller := NewPoller(persistence, chat, publisher, time.Second, slog.Default())

	poller.poll(ctx)
	assert.Empty(t, publisher.all())
}

func TestWatchedKeywords(t *testing.T) {
	workflows := []*models.Workflow{
		chatWorkflow("wf-a", "deploy", models.WorkflowStatusActive),
		chatWorkflow("wf-b", "alert", models.WorkflowStatusActive),
		chatWorkflow("wf-c", "ignored", models.WorkflowStatusDraft),
		scheduleWorkflow("wf-d", "@hourly", models.WorkflowStatusActive),
	}

	keywords := watchedKeywords(workflows)
	assert.Len(t, keywords, 2)
	assert.Contains(t, keywords, "deploy")
	assert.Contains(t, keywords, "alert")
}

func TestMarkSeen(t *testing.T) {
	poller := NewPoller(nil, nil, nil, time.Second, slog.Default())

	withID := protocol.Message{PostID: "post-1", Text: "hello"}
	assert.True(t, poller.markSeen(withID))
	assert.False(t, poller.markSeen(withID))

	now := time.Now().UTC()
	withoutID := protocol.Message{ChannelID: "c", UserID: "u", Text: "hi", CreatedAt: now}
	assert.True(t, poller.markSeen(withoutID))
	assert.False(t, poller.markSeen(withoutID))
}
