package workflow

import (
	"sync"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/models"
)

// Tracker is the in-memory registry of execution records. Records are kept
// for the lifetime of the process and are never evicted.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]*models.ExecutionRecord
}

func NewTracker() *Tracker {
	return &Tracker{
		records: make(map[string]*models.ExecutionRecord),
	}
}

// Register creates a Running record for a new execution.
func (t *Tracker) Register(executionID, workflowID, channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[executionID] = &models.ExecutionRecord{
		ID:         executionID,
		WorkflowID: workflowID,
		Status:     models.ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
		ChannelID:  channelID,
	}
}

// MarkCompleted transitions a record to Completed. Records already in a
// terminal state are left untouched.
func (t *Tracker) MarkCompleted(executionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[executionID]
	if !ok || record.Status.Terminal() {
		return
	}

	now := time.Now().UTC()
	record.Status = models.ExecutionStatusCompleted
	record.CompletedAt = &now
}

// MarkError transitions a record to Error with the given message. Records
// already in a terminal state are left untouched.
func (t *Tracker) MarkError(executionID, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[executionID]
	if !ok || record.Status.Terminal() {
		return
	}

	now := time.Now().UTC()
	record.Status = models.ExecutionStatusError
	record.CompletedAt = &now
	record.ErrorMessage = message
}

// Get returns a copy of the record for the given execution ID.
func (t *Tracker) Get(executionID string) (models.ExecutionRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	record, ok := t.records[executionID]
	if !ok {
		return models.ExecutionRecord{}, false
	}

	return *record, true
}

// CountRunning returns the number of executions still in the Running state.
func (t *Tracker) CountRunning() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0

	for _, record := range t.records {
		if record.Status == models.ExecutionStatusRunning {
			count++
		}
	}

	return count
}

// List returns copies of all known execution records.
func (t *Tracker) List() []models.ExecutionRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records := make([]models.ExecutionRecord, 0, len(t.records))
	for _, record := range t.records {
		records = append(records, *record)
	}

	return records
}
