package workflow

import (
	"log/slog"
	"strings"

	"github.com/chatflow-dev/chatflow/pkg/events"
	"github.com/chatflow-dev/chatflow/pkg/models"
	"github.com/chatflow-dev/chatflow/pkg/nodes/trigger"
)

// TriggerMatcher matches inbound chat messages against workflow trigger
// configurations.
type TriggerMatcher struct {
	logger *slog.Logger
}

// MatchResult pairs a matched workflow with the trigger node that matched.
type MatchResult struct {
	Workflow    *models.Workflow
	TriggerNode *models.WorkflowNode
}

func NewTriggerMatcher(logger *slog.Logger) *TriggerMatcher {
	return &TriggerMatcher{
		logger: logger.With("module", "trigger_matcher"),
	}
}

// MatchChatMessage returns the active workflows whose chat_message trigger
// matches the given message. An empty channel list matches every channel; an
// empty keyword list matches every message; keyword matching is
// case-insensitive.
func (tm *TriggerMatcher) MatchChatMessage(event events.ChatMessageReceived, workflows []*models.Workflow) []MatchResult {
	var results []MatchResult

	for _, wf := range workflows {
		if wf.Status != models.WorkflowStatusActive {
			continue
		}

		triggerNode := wf.TriggerNode()
		if triggerNode == nil {
			continue
		}

		config := triggerConfig(wf, triggerNode)

		if configString(config, "trigger_type") != trigger.TriggerTypeChatMessage {
			continue
		}

		if !tm.matchChannel(event.ChannelID, configStrings(config, "channels")) {
			continue
		}

		if !tm.matchKeywords(event.Text, configStrings(config, "keywords")) {
			continue
		}

		tm.logger.Debug("Chat message matched workflow",
			"workflow_id", wf.ID,
			"workflow_name", wf.Name,
			"channel_id", event.ChannelID)

		results = append(results, MatchResult{Workflow: wf, TriggerNode: triggerNode})
	}

	return results
}

func (tm *TriggerMatcher) matchChannel(channelID string, channels []string) bool {
	if len(channels) == 0 {
		return true
	}

	for _, candidate := range channels {
		if candidate == channelID {
			return true
		}
	}

	return false
}

func (tm *TriggerMatcher) matchKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	lowered := strings.ToLower(text)

	for _, keyword := range keywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}

// triggerConfig merges the workflow-level trigger configuration with the
// trigger node's own config; node config wins on conflicts.
func triggerConfig(wf *models.Workflow, node *models.WorkflowNode) map[string]any {
	merged := make(map[string]any, len(wf.TriggerConfig)+len(node.Config))

	for k, v := range wf.TriggerConfig {
		merged[k] = v
	}

	for k, v := range node.Config {
		merged[k] = v
	}

	return merged
}

func configString(config map[string]any, key string) string {
	value, _ := config[key].(string)

	return value
}

func configStrings(config map[string]any, key string) []string {
	raw, ok := config[key]
	if !ok {
		return nil
	}

	switch values := raw.(type) {
	case []string:
		return values
	case []any:
		result := make([]string, 0, len(values))

		for _, v := range values {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}

		return result
	default:
		return nil
	}
}
