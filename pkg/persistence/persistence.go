// Package persistence provides the data storage abstraction for workflows.
package persistence

import (
	"context"

	"github.com/chatflow-dev/chatflow/pkg/models"
)

type Persistence interface {
	// Workflows returns all workflows, filtered by team when teamID is
	// non-empty.
	Workflows(ctx context.Context, teamID string) ([]*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
