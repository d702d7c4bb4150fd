package models

import (
	"log/slog"
	"time"

	"go.jetify.com/typeid"
)

// NewExecutionID returns a fresh globally-unique execution identifier.
func NewExecutionID() string {
	id, err := typeid.WithPrefix("exec")
	if err != nil {
		panic(err)
	}

	return id.String()
}

// ExecutionStatus represents the lifecycle state of one workflow run.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusError     ExecutionStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusError
}

// ExecutionRecord tracks one run of a workflow. Records are created by the
// execution engine at run start, mutated only by the run that created them,
// and kept for the life of the process.
type ExecutionRecord struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id"`
	Status       ExecutionStatus `json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	ChannelID    string          `json:"channel_id,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// ExecutionContext carries per-run identity into node handlers. Handlers
// receive it by value; the payload travels separately and is the only
// mutable data of a run.
type ExecutionContext struct {
	ExecutionID string
	WorkflowID  string
	ChannelID   string
	Logger      *slog.Logger
}
