package cmd

import (
	"log/slog"

	"github.com/chatflow-dev/chatflow/pkg/registry"
)

// NewRegistry builds a registry with the built-in node factories registered
// against the given capabilities.
func NewRegistry(logger *slog.Logger, caps registry.Capabilities) *registry.Registry {
	reg := registry.NewRegistry(logger)
	registry.RegisterDefaults(reg, caps)

	return reg
}
