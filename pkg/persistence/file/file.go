// Package file provides file-based persistence for workflows, one JSON
// document per workflow.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates a new instance rooted at the given directory. The
// directory is created if it does not exist.
func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	if err := os.MkdirAll(cleanRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workflow directory %s: %w", cleanRoot, err)
	}

	return &Persistence{root: cleanRoot}, nil
}

func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Workflows(_ context.Context, teamID string) ([]*models.Workflow, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	entries, err := os.ReadDir(fp.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow directory: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		workflow, err := fp.read(filepath.Join(fp.root, entry.Name()))
		if err != nil {
			return nil, err
		}

		if teamID != "" && workflow.TeamID != teamID {
			continue
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (fp *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	workflow, err := fp.read(fp.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, err
	}

	return workflow, nil
}

func (fp *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	if !workflow.Status.Valid() {
		return persistence.NewWorkflowError("Save", workflow.ID,
			fmt.Errorf("%w: %q", persistence.ErrInvalidWorkflowStatus, workflow.Status))
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := os.WriteFile(fp.path(workflow.ID), data, 0o644); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (fp *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := os.Remove(fp.path(id)); err != nil {
		if os.IsNotExist(err) {
			return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

func (fp *Persistence) path(id string) string {
	return filepath.Join(fp.root, id+".json")
}

func (fp *Persistence) read(path string) (*models.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}

	return &workflow, nil
}
