// Package web provides HTTP handlers and REST API endpoints for workflow
// management and execution.
package web

import (
	"net/http"
	"time"

	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/persistence"
	"github.com/chatflow-dev/chatflow/pkg/registry"
	"github.com/chatflow-dev/chatflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type APIHandlers struct {
	persistence persistence.Persistence
	executor    *workflow.Executor
	registry    *registry.Registry
	validator   *validator.Validate
}

func NewAPIHandlers(
	p persistence.Persistence,
	executor *workflow.Executor,
	reg *registry.Registry,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		persistence: p,
		executor:    executor,
		registry:    reg,
		validator:   validate,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.Workflows(c.Context(), c.Query("team_id"))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.persistence.WorkflowByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	nodes, err := h.buildNodes(req.Nodes)
	if err != nil {
		return badRequest(c, err.Error())
	}

	now := time.Now().UTC()
	wf := &models.Workflow{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Description:   req.Description,
		Status:        models.WorkflowStatusDraft,
		Nodes:         nodes,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     req.CreatedBy,
		TeamID:        req.TeamID,
		TriggerConfig: req.TriggerConfig,
	}

	if err := h.persistence.SaveWorkflow(c.Context(), wf); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.persistence.WorkflowByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Status != nil {
		existing.Status = models.WorkflowStatus(*req.Status)
	}

	if req.Nodes != nil {
		nodes, err := h.buildNodes(req.Nodes)
		if err != nil {
			return badRequest(c, err.Error())
		}

		existing.Nodes = nodes
	}

	if req.TriggerConfig != nil {
		existing.TriggerConfig = req.TriggerConfig
	}

	existing.UpdatedAt = time.Now().UTC()

	if err := h.persistence.SaveWorkflow(c.Context(), existing); err != nil {
		return internalError(c, err)
	}

	return c.JSON(existing)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.persistence.DeleteWorkflow(c.Context(), id); err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecuteWorkflow launches a workflow run in the background and returns the
// execution ID immediately.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	wf, err := h.persistence.WorkflowByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	executionID := h.executor.Start(wf, req.TriggerData, req.ChannelID)

	return c.Status(fiber.StatusAccepted).JSON(ExecutionStartedResponse{
		ExecutionID: executionID,
		WorkflowID:  wf.ID,
		Status:      string(models.ExecutionStatusRunning),
	})
}

// TriggerWebhook starts a workflow from an inbound webhook. The request body
// becomes the trigger data.
func (h *APIHandlers) TriggerWebhook(c fiber.Ctx) error {
	id := c.Params("workflowID")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var triggerData map[string]any
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&triggerData); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	wf, err := h.persistence.WorkflowByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	if wf.Status != models.WorkflowStatusActive {
		return conflict(c, "Workflow is not active")
	}

	executionID := h.executor.Start(wf, triggerData, "")

	return c.Status(fiber.StatusAccepted).JSON(ExecutionStartedResponse{
		ExecutionID: executionID,
		WorkflowID:  wf.ID,
		Status:      string(models.ExecutionStatusRunning),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	record, ok := h.executor.Tracker().Get(id)
	if !ok {
		return notFound(c, "Execution not found")
	}

	return c.JSON(record)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	persistenceErr := h.persistence.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && persistenceErr == nil {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":            status,
		"active_executions": h.executor.Tracker().CountRunning(),
		"checkers": fiber.Map{
			"registry":    registryCheck,
			"persistence": persistenceErr == nil,
		},
		"timestamp": time.Now().UTC(),
	})
}

// buildNodes converts node requests into model nodes, validating each config
// against the registered factory schema.
func (h *APIHandlers) buildNodes(requests []NodeRequest) ([]*models.WorkflowNode, error) {
	nodes := make([]*models.WorkflowNode, 0, len(requests))

	for _, req := range requests {
		node := &models.WorkflowNode{
			ID:          req.ID,
			Type:        models.NodeType(req.Type),
			Name:        req.Name,
			Config:      req.Config,
			PositionX:   req.PositionX,
			PositionY:   req.PositionY,
			Connections: req.Connections,
		}

		if node.Config == nil {
			node.Config = map[string]any{}
		}

		if err := h.registry.ValidateNodeConfig(node); err != nil {
			return nil, err
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}
