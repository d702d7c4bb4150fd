package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/nodes/trigger"
	"github.com/chatflow-dev/chatflow/pkg/persistence"
	"github.com/chatflow-dev/chatflow/pkg/workflow"
	"github.com/robfig/cron/v3"
)

// Scheduler runs workflows with schedule triggers on their cron expressions.
// It reconciles cron entries against the stored workflows on an interval, so
// activating, editing or deleting a workflow takes effect without a restart.
type Scheduler struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	executor    *workflow.Executor
	cron        *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
	specs   map[string]string
}

func NewScheduler(
	persistence persistence.Persistence,
	executor *workflow.Executor,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		logger:      logger.With("module", "scheduler"),
		persistence: persistence,
		executor:    executor,
		cron:        cron.New(),
		entries:     make(map[string]cron.EntryID),
		specs:       make(map[string]string),
	}
}

// Start reconciles immediately, then on every refresh tick until the context
// is cancelled.
func (s *Scheduler) Start(ctx context.Context, refresh time.Duration) {
	s.reconcile(ctx)
	s.cron.Start()

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-s.cron.Stop().Done()

			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	workflows, err := s.persistence.Workflows(ctx, "")
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load workflows", "error", err)

		return
	}

	desired := make(map[string]string)

	for _, wf := range workflows {
		spec := scheduleSpec(wf)
		if spec == "" {
			continue
		}

		desired[wf.ID] = spec
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		if spec, ok := desired[id]; ok && spec == s.specs[id] {
			continue
		}

		s.cron.Remove(entry)
		delete(s.entries, id)
		delete(s.specs, id)
	}

	for id, spec := range desired {
		if _, ok := s.entries[id]; ok {
			continue
		}

		entry, err := s.cron.AddFunc(spec, func() {
			s.fire(id)
		})
		if err != nil {
			s.logger.WarnContext(ctx, "Invalid cron expression",
				"workflow_id", id,
				"cron", spec,
				"error", err,
			)

			continue
		}

		s.entries[id] = entry
		s.specs[id] = spec
		s.logger.InfoContext(ctx, "Scheduled workflow", "workflow_id", id, "cron", spec)
	}
}

// fire loads the workflow fresh from persistence, so edits made since the
// cron entry was registered apply to the run.
func (s *Scheduler) fire(workflowID string) {
	ctx := context.Background()

	wf, err := s.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		s.logger.Error("Failed to load scheduled workflow", "workflow_id", workflowID, "error", err)

		return
	}

	if wf.Status != models.WorkflowStatusActive {
		s.logger.Debug("Skipping no longer active workflow", "workflow_id", workflowID)

		return
	}

	triggerData := map[string]any{
		"trigger_type": trigger.TriggerTypeSchedule,
		"scheduled_at": time.Now().UTC().Format(time.RFC3339),
	}

	channelID := ""
	if node := wf.TriggerNode(); node != nil {
		channelID = node.ConfigString("channel_id", "")
	}

	executionID := s.executor.Start(wf, triggerData, channelID)
	s.logger.Info("Scheduled workflow execution started",
		"workflow_id", wf.ID,
		"execution_id", executionID,
	)
}

// scheduleSpec returns the cron expression for a workflow, or "" when the
// workflow is not an active schedule-triggered one.
func scheduleSpec(wf *models.Workflow) string {
	if wf.Status != models.WorkflowStatusActive {
		return ""
	}

	node := wf.TriggerNode()
	if node == nil {
		return ""
	}

	config := mergedTriggerConfig(wf, node)
	if stringValue(config, "trigger_type") != trigger.TriggerTypeSchedule {
		return ""
	}

	return stringValue(config, "cron")
}
