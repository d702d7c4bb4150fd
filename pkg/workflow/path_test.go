package workflow

import (
	"testing"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func node(id string, connections ...string) *models.WorkflowNode {
	return &models.WorkflowNode{ID: id, Type: models.NodeTypeAction, Connections: connections}
}

func TestComputePath_PreOrder(t *testing.T) {
	nodes := []*models.WorkflowNode{
		node("a", "b", "c"),
		node("b", "d"),
		node("c"),
		node("d"),
	}

	path := ComputePath(nodes, "a")
	assert.Equal(t, []string{"a", "b", "d", "c"}, path, "each node must precede its successors, successors in declared order")
}

func TestComputePath_CycleTerminates(t *testing.T) {
	nodes := []*models.WorkflowNode{
		node("a", "b"),
		node("b", "a"),
	}

	path := ComputePath(nodes, "a")
	assert.Equal(t, []string{"a", "b"}, path)
}

func TestComputePath_DanglingConnectionSkipped(t *testing.T) {
	nodes := []*models.WorkflowNode{
		node("a", "ghost", "b"),
		node("b"),
	}

	path := ComputePath(nodes, "a")
	assert.Equal(t, []string{"a", "b"}, path)
}

func TestComputePath_DiamondVisitedOnce(t *testing.T) {
	nodes := []*models.WorkflowNode{
		node("a", "b", "c"),
		node("b", "d"),
		node("c", "d"),
		node("d"),
	}

	path := ComputePath(nodes, "a")
	assert.Equal(t, []string{"a", "b", "d", "c"}, path, "shared successor must only appear once")
}

func TestComputePath_UnknownStart(t *testing.T) {
	path := ComputePath([]*models.WorkflowNode{node("a")}, "missing")
	assert.Empty(t, path)
}
