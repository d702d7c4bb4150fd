package protocol

import "context"

// AgentProgress receives human-readable progress updates while an agent run
// is in flight. Implementations must tolerate being called from the
// executing goroutine and should never block for long.
type AgentProgress func(message string)

// AIClient is the opaque language-model capability consumed by the ai_agent
// and transform node handlers. Implementations live outside the engine; the
// engine only ever sees prompt text in and completion text out.
type AIClient interface {
	// Complete sends a single prompt and returns the completion text.
	Complete(ctx context.Context, prompt string) (string, error)

	// RunAgent runs an agent loop with tool access for the given prompt,
	// reporting progress through the optional callback.
	RunAgent(ctx context.Context, prompt string, progress AgentProgress) (string, error)
}
