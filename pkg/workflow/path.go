package workflow

import "github.com/chatflow-dev/chatflow/pkg/models"

// ComputePath returns the node IDs reachable from startNodeID in pre-order:
// each node before its successors, successors in declared order. A visited set
// keeps cyclic graphs terminating, and connections pointing at unknown node
// IDs are skipped.
func ComputePath(nodes []*models.WorkflowNode, startNodeID string) []string {
	index := make(map[string]*models.WorkflowNode, len(nodes))
	for _, node := range nodes {
		index[node.ID] = node
	}

	visited := make(map[string]bool, len(nodes))
	path := make([]string, 0, len(nodes))

	var visit func(id string)
	visit = func(id string) {
		node, ok := index[id]
		if !ok || visited[id] {
			return
		}

		visited[id] = true
		path = append(path, id)

		for _, next := range node.Connections {
			visit(next)
		}
	}

	visit(startNodeID)

	return path
}
