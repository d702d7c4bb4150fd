package aiagent

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	completion string
	err        error
	lastPrompt string
}

func (f *fakeAI) Complete(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt

	return f.completion, f.err
}

func (f *fakeAI) RunAgent(_ context.Context, prompt string, progress protocol.AgentProgress) (string, error) {
	f.lastPrompt = prompt

	if progress != nil {
		progress("agent started")
	}

	return f.completion, f.err
}

type fakeNotifier struct {
	posts []string
}

func (f *fakeNotifier) Post(_ context.Context, _ string, message string) error {
	f.posts = append(f.posts, message)

	return nil
}

func (f *fakeNotifier) Search(_ context.Context, _ string) ([]protocol.Message, error) {
	return nil, nil
}

func TestAIAgentNode_Execute(t *testing.T) {
	ai := &fakeAI{completion: "done"}
	notifier := &fakeNotifier{}

	node, err := NewNode("agent-1", map[string]any{
		"prompt": "Handle: {{ .data.message }}",
	}, ai, notifier)
	require.NoError(t, err)

	payload := map[string]any{"message": "ship it"}
	execCtx := models.ExecutionContext{ExecutionID: "exec-1", ChannelID: "chan-1", Logger: slog.Default()}

	result, err := node.Execute(context.Background(), execCtx, payload)
	require.NoError(t, err)

	assert.Equal(t, "Handle: ship it", ai.lastPrompt)
	assert.Equal(t, "done", result.Payload["ai_result"])
	assert.Equal(t, payload, result.Payload["original_data"])
	assert.False(t, result.Halt)
}

func TestAIAgentNode_ProgressGoesToChannel(t *testing.T) {
	ai := &fakeAI{completion: "ok"}
	notifier := &fakeNotifier{}

	node, err := NewNode("agent-1", map[string]any{}, ai, notifier)
	require.NoError(t, err)

	execCtx := models.ExecutionContext{ExecutionID: "exec-1", ChannelID: "chan-1", Logger: slog.Default()}

	_, err = node.Execute(context.Background(), execCtx, map[string]any{})
	require.NoError(t, err)

	require.Len(t, notifier.posts, 1)
	assert.Contains(t, notifier.posts[0], "agent started")
}

func TestAIAgentNode_NoChannelNoProgress(t *testing.T) {
	ai := &fakeAI{completion: "ok"}
	notifier := &fakeNotifier{}

	node, err := NewNode("agent-1", map[string]any{}, ai, notifier)
	require.NoError(t, err)

	execCtx := models.ExecutionContext{ExecutionID: "exec-1", Logger: slog.Default()}

	_, err = node.Execute(context.Background(), execCtx, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, notifier.posts)
}

func TestAIAgentNode_FailurePropagates(t *testing.T) {
	ai := &fakeAI{err: errors.New("model unavailable")}

	node, err := NewNode("agent-1", map[string]any{}, ai, &fakeNotifier{})
	require.NoError(t, err)

	execCtx := models.ExecutionContext{ExecutionID: "exec-1", Logger: slog.Default()}

	_, err = node.Execute(context.Background(), execCtx, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent run failed")
}
