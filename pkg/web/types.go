// Package web provides HTTP request and response types for the workflow API.
package web

// NodeRequest represents a workflow node in create and update requests.
type NodeRequest struct {
	ID          string         `json:"id"          validate:"required,min=1"`
	Type        string         `json:"type"        validate:"required,oneof=trigger action condition ai_agent transform output"`
	Name        string         `json:"name"`
	Config      map[string]any `json:"config"`
	PositionX   int            `json:"position_x"`
	PositionY   int            `json:"position_y"`
	Connections []string       `json:"connections"`
}

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name          string         `json:"name"                     validate:"required,min=3"`
	Description   string         `json:"description"`
	CreatedBy     string         `json:"created_by"`
	TeamID        string         `json:"team_id"`
	Nodes         []NodeRequest  `json:"nodes"                    validate:"dive"`
	TriggerConfig map[string]any `json:"trigger_config,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name          *string        `json:"name,omitempty"           validate:"omitempty,min=3"`
	Description   *string        `json:"description,omitempty"`
	Status        *string        `json:"status,omitempty"         validate:"omitempty,oneof=draft active paused error completed"`
	Nodes         []NodeRequest  `json:"nodes,omitempty"          validate:"omitempty,dive"`
	TriggerConfig map[string]any `json:"trigger_config,omitempty"`
}

// ExecuteWorkflowRequest represents the request body for manually executing a
// workflow.
type ExecuteWorkflowRequest struct {
	TriggerData map[string]any `json:"trigger_data,omitempty"`
	ChannelID   string         `json:"channel_id,omitempty"`
}

// ExecutionStartedResponse is returned when an execution has been launched.
type ExecutionStartedResponse struct {
	ExecutionID string `json:"execution_id"`
	WorkflowID  string `json:"workflow_id"`
	Status      string `json:"status"`
}
