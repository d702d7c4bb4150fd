package workflow

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/chatflow-dev/chatflow/pkg/eventbus"
	"github.com/chatflow-dev/chatflow/pkg/events"
	"github.com/chatflow-dev/chatflow/pkg/expression"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
	"github.com/chatflow-dev/chatflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	channels []string
}

func (r *recordingNotifier) Post(_ context.Context, channelID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.channels = append(r.channels, channelID)
	r.messages = append(r.messages, message)

	return nil
}

func (r *recordingNotifier) Search(_ context.Context, _ string) ([]protocol.Message, error) {
	return nil, nil
}

func (r *recordingNotifier) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.messages...)
}

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

func (r *recordingPublisher) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]events.EventType, 0, len(r.events))
	for _, event := range r.events {
		result = append(result, event.GetType())
	}

	return result
}

type staticAI struct {
	completion string
}

func (s *staticAI) Complete(_ context.Context, _ string) (string, error) {
	return s.completion, nil
}

func (s *staticAI) RunAgent(_ context.Context, _ string, _ protocol.AgentProgress) (string, error) {
	return s.completion, nil
}

func newTestExecutor(t *testing.T, notifier protocol.Notifier, bus eventbus.EventPublisher) *Executor {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	registry.RegisterDefaults(reg, registry.Capabilities{
		HTTPClient: http.DefaultClient,
		Evaluator:  expression.NewEvaluator(),
		AI:         &staticAI{completion: `{"summary": "ok"}`},
		Notifier:   notifier,
	})

	return NewExecutor(reg, NewTracker(), notifier, bus, nil, slog.Default())
}

func triggerNode(connections ...string) *models.WorkflowNode {
	return &models.WorkflowNode{
		ID:          "start",
		Type:        models.NodeTypeTrigger,
		Config:      map[string]any{"trigger_type": "chat_message"},
		Connections: connections,
	}
}

func TestExecutor_PayloadThreadedThroughNodes(t *testing.T) {
	notifier := &recordingNotifier{}
	executor := newTestExecutor(t, notifier, nil)

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "doubler",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			triggerNode("double"),
			{
				ID:   "double",
				Type: models.NodeTypeAction,
				Config: map[string]any{
					"action_type": "data_transform",
					"expression":  `{"doubled": data.value * 2}`,
				},
				Connections: []string{"gate"},
			},
			{
				ID:          "gate",
				Type:        models.NodeTypeCondition,
				Config:      map[string]any{"condition": "data.doubled == 42"},
				Connections: []string{"announce"},
			},
			{
				ID:          "announce",
				Type:        models.NodeTypeOutput,
				Config:      map[string]any{"message_template": "Result: {{ .data.doubled }}"},
				Connections: []string{},
			},
		},
	}

	executionID, err := executor.Execute(context.Background(), wf, map[string]any{"value": 21}, "town-square")
	require.NoError(t, err)

	record, ok := executor.Tracker().Get(executionID)
	require.True(t, ok)
	assert.Equal(t, models.ExecutionStatusCompleted, record.Status)

	require.Len(t, notifier.all(), 1)
	assert.Equal(t, "Result: 42", notifier.all()[0])
}

func TestExecutor_ConditionFalseSkipsDownstream(t *testing.T) {
	notifier := &recordingNotifier{}
	executor := newTestExecutor(t, notifier, nil)

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "gated",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			triggerNode("gate"),
			{
				ID:          "gate",
				Type:        models.NodeTypeCondition,
				Config:      map[string]any{"condition": "data.value > 100"},
				Connections: []string{"announce"},
			},
			{
				ID:     "announce",
				Type:   models.NodeTypeOutput,
				Config: map[string]any{},
			},
		},
	}

	executionID, err := executor.Execute(context.Background(), wf, map[string]any{"value": 1}, "town-square")
	require.NoError(t, err)

	record, ok := executor.Tracker().Get(executionID)
	require.True(t, ok)
	assert.Equal(t, models.ExecutionStatusCompleted, record.Status, "a false condition completes the run, it does not fail it")
	assert.Empty(t, notifier.all(), "nodes downstream of a false condition must not run")
}

func TestExecutor_NodeErrorStillReachesOutput(t *testing.T) {
	notifier := &recordingNotifier{}
	executor := newTestExecutor(t, notifier, nil)

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "resilient",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			triggerNode("fetch"),
			{
				ID:   "fetch",
				Type: models.NodeTypeAction,
				Config: map[string]any{
					"action_type": "http_request",
					"url":         "http://127.0.0.1:1/unreachable",
				},
				Connections: []string{"announce"},
			},
			{
				ID:          "announce",
				Type:        models.NodeTypeOutput,
				Config:      map[string]any{"message_template": "error={{ .data.error }}"},
				Connections: []string{},
			},
		},
	}

	executionID, err := executor.Execute(context.Background(), wf, map[string]any{}, "town-square")
	require.NoError(t, err, "an HTTP failure is folded into the payload, not escalated")

	record, ok := executor.Tracker().Get(executionID)
	require.True(t, ok)
	assert.Equal(t, models.ExecutionStatusCompleted, record.Status)

	require.Len(t, notifier.all(), 1)
	assert.Contains(t, notifier.all()[0], "error=")
}

func TestExecutor_NoTriggerNodeFails(t *testing.T) {
	notifier := &recordingNotifier{}
	executor := newTestExecutor(t, notifier, nil)

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "headless",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			{ID: "announce", Type: models.NodeTypeOutput, Config: map[string]any{}},
		},
	}

	executionID, err := executor.Execute(context.Background(), wf, nil, "town-square")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTriggerNode)

	record, ok := executor.Tracker().Get(executionID)
	require.True(t, ok)
	assert.Equal(t, models.ExecutionStatusError, record.Status)
	assert.NotEmpty(t, record.ErrorMessage)

	require.Len(t, notifier.all(), 1)
	assert.Contains(t, notifier.all()[0], "failed")
}

func TestExecutor_UnregisteredNodeTypeFails(t *testing.T) {
	notifier := &recordingNotifier{}
	executor := newTestExecutor(t, notifier, nil)

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "broken",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			triggerNode("mystery"),
			{ID: "mystery", Type: models.NodeType("bogus"), Config: map[string]any{}},
		},
	}

	executionID, err := executor.Execute(context.Background(), wf, nil, "")
	require.Error(t, err)

	record, ok := executor.Tracker().Get(executionID)
	require.True(t, ok)
	assert.Equal(t, models.ExecutionStatusError, record.Status)
}

func TestExecutor_CyclicGraphTerminates(t *testing.T) {
	executor := newTestExecutor(t, &recordingNotifier{}, nil)

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "loop",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			triggerNode("a"),
			{
				ID:          "a",
				Type:        models.NodeTypeAction,
				Config:      map[string]any{"action_type": "data_transform", "expression": `{"n": 1}`},
				Connections: []string{"b"},
			},
			{
				ID:          "b",
				Type:        models.NodeTypeAction,
				Config:      map[string]any{"action_type": "data_transform", "expression": `{"n": 2}`},
				Connections: []string{"a"},
			},
		},
	}

	executionID, err := executor.Execute(context.Background(), wf, nil, "")
	require.NoError(t, err)

	record, ok := executor.Tracker().Get(executionID)
	require.True(t, ok)
	assert.Equal(t, models.ExecutionStatusCompleted, record.Status)
}

func TestExecutor_PublishesLifecycleEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	executor := newTestExecutor(t, &recordingNotifier{}, publisher)

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "observed",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			triggerNode("step"),
			{
				ID:     "step",
				Type:   models.NodeTypeAction,
				Config: map[string]any{"action_type": "data_transform", "expression": `{"ok": true}`},
			},
		},
	}

	_, err := executor.Execute(context.Background(), wf, nil, "")
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.WorkflowExecutionStartedEvent,
		events.NodeExecutionFinishedEvent,
		events.WorkflowExecutionCompletedEvent,
	}, publisher.types())
}

func TestExecutor_ConcurrentExecutionsGetDistinctIDs(t *testing.T) {
	executor := newTestExecutor(t, &recordingNotifier{}, nil)

	wf := &models.Workflow{
		ID:     "wf-1",
		Name:   "parallel",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.WorkflowNode{
			triggerNode("step"),
			{
				ID:     "step",
				Type:   models.NodeTypeAction,
				Config: map[string]any{"action_type": "data_transform", "expression": `{"ok": true}`},
			},
		},
	}

	const runs = 20

	ids := make(chan string, runs)

	var wg sync.WaitGroup

	for range runs {
		wg.Add(1)

		go func() {
			defer wg.Done()

			id, err := executor.Execute(context.Background(), wf, map[string]any{}, "")
			assert.NoError(t, err)
			ids <- id
		}()
	}

	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "execution IDs must be unique")
		seen[id] = true

		record, ok := executor.Tracker().Get(id)
		require.True(t, ok)
		assert.Equal(t, models.ExecutionStatusCompleted, record.Status)
	}

	assert.Len(t, seen, runs)
}
