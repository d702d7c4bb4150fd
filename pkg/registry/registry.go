// Package registry holds the node factories available to the engine and
// validates node configuration against each factory's schema.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger    *slog.Logger
	factories map[models.NodeType]protocol.NodeFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[models.NodeType]protocol.NodeFactory),
	}
}

// Register makes a factory available for its node type. Registering the same
// type twice replaces the earlier factory.
func (r *Registry) Register(factory protocol.NodeFactory) {
	r.factories[factory.Type()] = factory
	r.logger.Debug("Registered node factory", "node_type", factory.Type())
}

// CreateHandler builds a handler for the given workflow node. An unregistered
// node type is a workflow configuration error.
func (r *Registry) CreateHandler(node *models.WorkflowNode) (protocol.NodeHandler, error) {
	factory, ok := r.factories[node.Type]
	if !ok {
		return nil, fmt.Errorf("node type '%s' not registered", node.Type)
	}

	return factory.Create(node)
}

// ValidateNodeConfig checks the node's configuration against the schema
// published by its factory.
func (r *Registry) ValidateNodeConfig(node *models.WorkflowNode) error {
	factory, ok := r.factories[node.Type]
	if !ok {
		return fmt.Errorf("node type '%s' not registered", node.Type)
	}

	schemaLoader := gojsonschema.NewGoLoader(factory.Schema())
	dataLoader := gojsonschema.NewGoLoader(node.Config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate node '%s' config: %w", node.ID, err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}

		return fmt.Errorf("node '%s' config invalid: %s", node.ID, strings.Join(errs, "; "))
	}

	return nil
}

// HealthCheck reports the registered node types. The registry is healthy
// once at least one factory is registered.
func (r *Registry) HealthCheck() (map[string]any, bool) {
	types := r.AvailableTypes()

	return map[string]any{
		"registered_types": types,
		"count":            len(types),
	}, len(types) > 0
}

// AvailableTypes returns the registered node types.
func (r *Registry) AvailableTypes() []models.NodeType {
	types := make([]models.NodeType, 0, len(r.factories))
	for nodeType := range r.factories {
		types = append(types, nodeType)
	}

	return types
}
