// Package workflow implements the execution engine: path computation over
// the node graph, the in-memory execution tracker and the executor that walks
// a workflow from its trigger node.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/eventbus"
	"github.com/chatflow-dev/chatflow/pkg/events"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/otelhelper"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
	"github.com/chatflow-dev/chatflow/pkg/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var ErrNoTriggerNode = errors.New("workflow has no trigger node")

type Executor struct {
	registry *registry.Registry
	tracker  *Tracker
	notifier protocol.Notifier
	bus      eventbus.EventPublisher
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewExecutor(
	reg *registry.Registry,
	tracker *Tracker,
	notifier protocol.Notifier,
	bus eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Executor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("workflow")
	}

	return &Executor{
		registry: reg,
		tracker:  tracker,
		notifier: notifier,
		bus:      bus,
		tracer:   tracer,
		logger:   logger.With("module", "workflow_executor"),
	}
}

// Tracker exposes the executor's execution tracker for status queries.
func (e *Executor) Tracker() *Tracker {
	return e.tracker
}

// Execute runs the workflow from its trigger node and returns the execution
// ID. The record for that ID reaches a terminal state before Execute returns.
// The trigger data becomes the initial payload and is threaded through every
// node; handlers mutate it in place rather than working on copies.
func (e *Executor) Execute(ctx context.Context, wf *models.Workflow, triggerData map[string]any, channelID string) (string, error) {
	executionID := models.NewExecutionID()
	e.tracker.Register(executionID, wf.ID, channelID)

	return executionID, e.run(ctx, executionID, wf, triggerData, channelID)
}

// Start launches the workflow in the background and returns the execution ID
// immediately. The record is registered as Running before Start returns, so
// status queries for the ID always resolve.
func (e *Executor) Start(wf *models.Workflow, triggerData map[string]any, channelID string) string {
	executionID := models.NewExecutionID()
	e.tracker.Register(executionID, wf.ID, channelID)

	go func() {
		_ = e.run(context.Background(), executionID, wf, triggerData, channelID)
	}()

	return executionID
}

func (e *Executor) run(ctx context.Context, executionID string, wf *models.Workflow, triggerData map[string]any, channelID string) error {
	startedAt := time.Now()

	logger := e.logger.With("execution_id", executionID, "workflow_id", wf.ID)
	logger.Info("Starting workflow execution", "workflow_name", wf.Name)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.ExecutionIDKey, executionID),
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.WorkflowNameKey, wf.Name),
		attribute.String(otelhelper.ChannelIDKey, channelID),
	)
	defer span.End()

	payload := triggerData
	if payload == nil {
		payload = make(map[string]any)
	}

	e.publish(ctx, wf.ID, events.WorkflowExecutionStarted{
		BaseEvent:    events.NewBaseEvent(events.WorkflowExecutionStartedEvent, wf.ID),
		ExecutionID:  executionID,
		WorkflowName: wf.Name,
		ChannelID:    channelID,
		TriggerData:  triggerData,
	})

	triggerNode := wf.TriggerNode()
	if triggerNode == nil {
		err := fmt.Errorf("workflow %s: %w", wf.ID, ErrNoTriggerNode)

		return e.fail(ctx, failure{
			executionID: executionID,
			workflow:    wf,
			channelID:   channelID,
			err:         err,
			startedAt:   startedAt,
			span:        span,
			logger:      logger,
		})
	}

	execCtx := models.ExecutionContext{
		ExecutionID: executionID,
		WorkflowID:  wf.ID,
		ChannelID:   channelID,
		Logger:      logger,
	}

	path := ComputePath(wf.Nodes, triggerNode.ID)
	nodesExecuted := 0

	for _, nodeID := range path {
		node := wf.NodeByID(nodeID)
		if node == nil || node.IsTrigger() {
			continue
		}

		result, err := e.executeNode(ctx, execCtx, node, payload)
		if err != nil {
			return e.fail(ctx, failure{
				executionID:   executionID,
				workflow:      wf,
				channelID:     channelID,
				nodeID:        node.ID,
				err:           err,
				startedAt:     startedAt,
				nodesExecuted: nodesExecuted,
				span:          span,
				logger:        logger,
			})
		}

		nodesExecuted++
		payload = result.Payload

		if result.Halt {
			logger.Info("Node halted traversal", "node_id", node.ID)

			break
		}
	}

	e.tracker.MarkCompleted(executionID)

	e.publish(ctx, wf.ID, events.WorkflowExecutionCompleted{
		BaseEvent:     events.NewBaseEvent(events.WorkflowExecutionCompletedEvent, wf.ID),
		ExecutionID:   executionID,
		DurationMs:    time.Since(startedAt).Milliseconds(),
		NodesExecuted: nodesExecuted,
		FinalPayload:  payload,
	})

	logger.Info("Completed workflow execution", "nodes_executed", nodesExecuted)

	return nil
}

func (e *Executor) executeNode(ctx context.Context, execCtx models.ExecutionContext, node *models.WorkflowNode, payload map[string]any) (protocol.NodeResult, error) {
	nodeStartedAt := time.Now()

	nodeCtx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.node",
		attribute.String(otelhelper.ExecutionIDKey, execCtx.ExecutionID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
	)
	defer span.End()

	handler, err := e.registry.CreateHandler(node)
	if err != nil {
		otelhelper.SetError(span, err)

		return protocol.NodeResult{}, fmt.Errorf("failed to create handler for node %s: %w", node.ID, err)
	}

	execCtx.Logger.Info("Executing node", "node_id", node.ID, "node_type", node.Type)

	result, err := handler.Execute(nodeCtx, execCtx, payload)
	if err != nil {
		otelhelper.SetError(span, err)

		return protocol.NodeResult{}, fmt.Errorf("node %s failed: %w", node.ID, err)
	}

	e.publish(nodeCtx, execCtx.WorkflowID, events.NodeExecutionFinished{
		BaseEvent:   events.NewBaseEvent(events.NodeExecutionFinishedEvent, execCtx.WorkflowID),
		ExecutionID: execCtx.ExecutionID,
		NodeID:      node.ID,
		NodeType:    string(node.Type),
		Halted:      result.Halt,
		OutputData:  result.Payload,
		DurationMs:  time.Since(nodeStartedAt).Milliseconds(),
	})

	return result, nil
}

type failure struct {
	executionID   string
	workflow      *models.Workflow
	channelID     string
	nodeID        string
	err           error
	startedAt     time.Time
	nodesExecuted int
	span          trace.Span
	logger        *slog.Logger
}

func (e *Executor) fail(ctx context.Context, f failure) error {
	f.logger.Error("Workflow execution failed", "node_id", f.nodeID, "error", f.err)

	e.tracker.MarkError(f.executionID, f.err.Error())
	otelhelper.SetError(f.span, f.err)

	e.publish(ctx, f.workflow.ID, events.WorkflowExecutionFailed{
		BaseEvent:     events.NewBaseEvent(events.WorkflowExecutionFailedEvent, f.workflow.ID),
		ExecutionID:   f.executionID,
		NodeID:        f.nodeID,
		Error:         f.err.Error(),
		DurationMs:    time.Since(f.startedAt).Milliseconds(),
		NodesExecuted: f.nodesExecuted,
	})

	if e.notifier != nil && f.channelID != "" {
		message := fmt.Sprintf("Workflow '%s' failed: %s", f.workflow.Name, f.err)
		if err := e.notifier.Post(ctx, f.channelID, message); err != nil {
			f.logger.Warn("Failed to post failure notification", "channel_id", f.channelID, "error", err)
		}
	}

	return f.err
}

func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, key, event); err != nil {
		e.logger.Warn("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
