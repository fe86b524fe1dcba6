package core

import "context"

type AIProvider interface {
	Chat(ctx context.Context, history []Message, tools []Tool) (ChatResponse, error)
}

// Toolbox is the capability surface the dispatcher draws from: the advertised
// catalog plus execution of one named tool.
type Toolbox interface {
	GetTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, args string) (string, error)
}

// ToolDispatcher normalizes every tool invocation into a ToolResult. It must
// never leak a raw failure into the conversation loop.
type ToolDispatcher interface {
	Catalog(ctx context.Context) ([]Tool, error)
	Execute(ctx context.Context, name string, args string) ToolResult
}

// TaskObserver receives step and finish events from the orchestrator. It is a
// side channel: implementations must not influence control flow, and errors
// stay inside the observer.
type TaskObserver interface {
	OnStep(ctx context.Context, runID string, iteration int, step EpisodeStep)
	OnFinish(ctx context.Context, runID string, task string, status string, iterations int)
}
