package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBaseEvent(t *testing.T) {
	base := NewBaseEvent(WorkflowExecutionStartedEvent, "wf-1")

	assert.NotEmpty(t, base.ID)
	assert.Equal(t, WorkflowExecutionStartedEvent, base.Type)
	assert.Equal(t, "wf-1", base.WorkflowID)
	assert.False(t, base.Timestamp.IsZero())
	assert.NotNil(t, base.Metadata)
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, WorkflowExecutionStartedEvent, WorkflowExecutionStarted{}.GetType())
	assert.Equal(t, WorkflowExecutionCompletedEvent, WorkflowExecutionCompleted{}.GetType())
	assert.Equal(t, WorkflowExecutionFailedEvent, WorkflowExecutionFailed{}.GetType())
	assert.Equal(t, NodeExecutionFinishedEvent, NodeExecutionFinished{}.GetType())
	assert.Equal(t, ChatMessageReceivedEvent, ChatMessageReceived{}.GetType())
}
