package agent

import (
	"context"
	"fmt"

	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/pkg/log"
)

// Executor turns raw toolbox calls into uniform ToolResults. A failing tool
// becomes model-readable text, never an error that would abort the run.
type Executor struct {
	toolbox     core.Toolbox
	outputLimit int
}

func NewExecutor(toolbox core.Toolbox, outputLimit int) *Executor {
	return &Executor{toolbox: toolbox, outputLimit: outputLimit}
}

func (e *Executor) Catalog(ctx context.Context) ([]core.Tool, error) {
	return e.toolbox.GetTools(ctx)
}

func (e *Executor) Execute(ctx context.Context, name string, args string) core.ToolResult {
	output, err := e.toolbox.CallTool(ctx, name, args)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("tool", name).Msg("tool call failed")
		return core.ToolResult{Success: false, Output: fmt.Sprintf("Error: %v", err)}
	}
	return core.ToolResult{Success: true, Output: truncate(output, e.outputLimit)}
}

// truncate keeps the head and tail of oversized output, the middle is the
// least informative part of a long tool result.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}

	head := limit / 2
	tail := limit - head
	omitted := len(s) - limit
	return s[:head] + fmt.Sprintf("\n... [%d bytes omitted] ...\n", omitted) + s[len(s)-tail:]
}
