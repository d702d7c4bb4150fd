// Package models defines the core domain models for node-based workflow automation.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "draft"     // Editable, not picked up by trigger matching
	WorkflowStatusActive    WorkflowStatus = "active"    // Eligible for automatic triggering
	WorkflowStatusPaused    WorkflowStatus = "paused"    // Temporarily excluded from triggering
	WorkflowStatusError     WorkflowStatus = "error"     // Marked failed by an operator
	WorkflowStatusCompleted WorkflowStatus = "completed" // Finished one-shot workflows
)

// Valid reports whether the status is a known lifecycle state.
func (s WorkflowStatus) Valid() bool {
	switch s {
	case WorkflowStatusDraft, WorkflowStatusActive, WorkflowStatusPaused,
		WorkflowStatusError, WorkflowStatusCompleted:
		return true
	default:
		return false
	}
}

// Workflow represents a stored directed graph of typed nodes plus metadata.
//
// Status transitions are externally driven: the API accepts any transition and
// the execution engine behaves identically across statuses. Only the trigger
// matcher filters on WorkflowStatusActive.
type Workflow struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"           validate:"required,min=3"`
	Description   string          `json:"description"`
	Status        WorkflowStatus  `json:"status"         validate:"required"`
	Nodes         []*WorkflowNode `json:"nodes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CreatedBy     string          `json:"created_by"`
	TeamID        string          `json:"team_id"`
	TriggerConfig map[string]any  `json:"trigger_config,omitempty"`
}

// NodeByID returns the node with the given identifier, or nil.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// TriggerNode returns the first node of type trigger, or nil when the
// workflow has none. The engine treats a nil result as a hard failure at
// run start.
func (w *Workflow) TriggerNode() *WorkflowNode {
	for _, node := range w.Nodes {
		if node.Type == NodeTypeTrigger {
			return node
		}
	}

	return nil
}
