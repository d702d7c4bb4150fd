package registry

import (
	"net/http"

	"github.com/chatflow-dev/chatflow/pkg/expression"
	"github.com/chatflow-dev/chatflow/pkg/nodes/action"
	"github.com/chatflow-dev/chatflow/pkg/nodes/aiagent"
	"github.com/chatflow-dev/chatflow/pkg/nodes/condition"
	"github.com/chatflow-dev/chatflow/pkg/nodes/output"
	"github.com/chatflow-dev/chatflow/pkg/nodes/transform"
	"github.com/chatflow-dev/chatflow/pkg/nodes/trigger"
	"github.com/chatflow-dev/chatflow/pkg/protocol"
)

// Capabilities carries the shared dependencies handed to node factories.
type Capabilities struct {
	HTTPClient *http.Client
	Evaluator  *expression.Evaluator
	AI         protocol.AIClient
	Notifier   protocol.Notifier
}

// RegisterDefaults registers the built-in node factories.
func RegisterDefaults(r *Registry, caps Capabilities) {
	r.Register(trigger.NewFactory())
	r.Register(action.NewFactory(caps.HTTPClient, caps.Evaluator))
	r.Register(condition.NewFactory(caps.Evaluator))
	r.Register(aiagent.NewFactory(caps.AI, caps.Notifier))
	r.Register(transform.NewFactory(caps.AI))
	r.Register(output.NewFactory(caps.Notifier, caps.HTTPClient))
}
