package main

import "github.com/chatflow-dev/chatflow/pkg/models"

// mergedTriggerConfig merges the workflow-level trigger configuration with
// the trigger node's own config; node config wins on conflicts.
func mergedTriggerConfig(wf *models.Workflow, node *models.WorkflowNode) map[string]any {
	merged := make(map[string]any, len(wf.TriggerConfig)+len(node.Config))

	for k, v := range wf.TriggerConfig {
		merged[k] = v
	}

	for k, v := range node.Config {
		merged[k] = v
	}

	return merged
}

func stringValue(config map[string]any, key string) string {
	value, _ := config[key].(string)

	return value
}

func stringValues(config map[string]any, key string) []string {
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
